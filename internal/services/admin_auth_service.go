package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/visitordesk/checkin-backend/internal/config"
	"github.com/visitordesk/checkin-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AdminLoginResponse carries the tokens issued after a successful login
type AdminLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Email        string `json:"email"`
}

// AdminAuthService authenticates the dashboard operator. The deployment
// carries a single admin credential in configuration; there is no user
// table behind it.
type AdminAuthService struct {
	cfg                 config.AdminConfig
	jwtService          *jwt.Service
	accessTokenDuration time.Duration
	adminID             uuid.UUID
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(cfg config.AdminConfig, jwtService *jwt.Service, accessTokenDuration time.Duration) *AdminAuthService {
	return &AdminAuthService{
		cfg:                 cfg,
		jwtService:          jwtService,
		accessTokenDuration: accessTokenDuration,
		// Stable ID derived from the admin email so tokens survive restarts
		adminID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(cfg.Email)),
	}
}

// Login verifies the admin credential and issues tokens
func (s *AdminAuthService) Login(email, password string) (*AdminLoginResponse, error) {
	if s.cfg.Email == "" || s.cfg.PasswordHash == "" {
		return nil, fmt.Errorf("admin login is not configured")
	}

	if !strings.EqualFold(email, s.cfg.Email) {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	accessToken, err := s.jwtService.GenerateAccessToken(s.adminID, s.cfg.Email, []string{"admin"})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(s.adminID, s.cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AdminLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTokenDuration.Seconds()),
		Email:        s.cfg.Email,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AdminAuthService) Refresh(refreshToken string) (*AdminLoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if !strings.EqualFold(claims.Email, s.cfg.Email) {
		return nil, fmt.Errorf("refresh token does not match the configured admin")
	}

	accessToken, err := s.jwtService.GenerateAccessToken(s.adminID, s.cfg.Email, []string{"admin"})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AdminLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTokenDuration.Seconds()),
		Email:        s.cfg.Email,
	}, nil
}
