package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitordesk/checkin-backend/pkg/jwt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		userCtx, _ := GetUserContext(c)
		c.JSON(http.StatusOK, gin.H{"email": userCtx.Email})
	})
	router.GET("/admin", AuthMiddleware(jwtService), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, jwtService
}

func TestAuthMiddleware(t *testing.T) {
	router, jwtService := newAuthRouter(t)

	adminToken, err := jwtService.GenerateAccessToken(uuid.New(), "admin@office.example", []string{"admin"})
	require.NoError(t, err)

	viewerToken, err := jwtService.GenerateAccessToken(uuid.New(), "viewer@office.example", []string{"viewer"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		header   string
		expected int
	}{
		{"missing header", "/protected", "", http.StatusUnauthorized},
		{"wrong scheme", "/protected", "Basic abc123", http.StatusUnauthorized},
		{"empty token", "/protected", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "/protected", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "/protected", "Bearer " + adminToken, http.StatusOK},
		{"admin role accepted", "/admin", "Bearer " + adminToken, http.StatusOK},
		{"viewer role rejected", "/admin", "Bearer " + viewerToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	expired := jwt.NewService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)
	token, err := expired.GenerateAccessToken(uuid.New(), "admin@office.example", []string{"admin"})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(expired), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}
