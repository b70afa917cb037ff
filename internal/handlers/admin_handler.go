package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/services"
)

// AdminHandler handles dashboard authentication and audit queries
type AdminHandler struct {
	authService  *services.AdminAuthService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *services.AdminAuthService, auditService *services.AuditService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		auditService: auditService,
		logger:       logger,
	}
}

// loginRequest carries the dashboard credentials
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// refreshRequest carries a refresh token
type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login authenticates the dashboard operator
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login credentials"
// @Success 200 {object} services.AdminLoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"email": req.Email,
			"ip":    c.ClientIP(),
		}).Warn("Admin login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.logger.WithField("email", response.Email).Info("Admin login successful")
	c.JSON(http.StatusOK, response)
}

// Refresh exchanges a refresh token for a new access token
// @Summary Refresh access token
// @Tags Admin
// @Accept json
// @Produce json
// @Param token body refreshRequest true "Refresh token"
// @Success 200 {object} services.AdminLoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /admin/refresh [post]
func (h *AdminHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	response, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Token refresh failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// RecentAudit returns the most recent audit records across all guests
// @Summary Recent audit records
// @Tags Admin
// @Produce json
// @Param limit query int false "Maximum records" default(100)
// @Success 200 {object} map[string]interface{}
// @Router /admin/audit [get]
func (h *AdminHandler) RecentAudit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	records, err := h.auditService.GetRecentRecords(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get audit records")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
