package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/internal/services"
	"github.com/visitordesk/checkin-backend/internal/utils"
)

// GuestHandler handles guest lifecycle HTTP requests
type GuestHandler struct {
	visitService *services.VisitService
	statsService *services.StatsService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(
	visitService *services.VisitService,
	statsService *services.StatsService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *GuestHandler {
	return &GuestHandler{
		visitService: visitService,
		statsService: statsService,
		auditService: auditService,
		logger:       logger,
	}
}

// requestMeta captures client metadata for the audit trail
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// ListGuests returns every guest, newest first
// @Summary List guests
// @Tags Guests
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /guests [get]
func (h *GuestHandler) ListGuests(c *gin.Context) {
	guests, err := h.visitService.ListGuests()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list guests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list guests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guests": guests, "count": len(guests)})
}

// GetGuest returns one guest by ID
// @Summary Get guest
// @Tags Guests
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} models.Guest
// @Failure 404 {object} map[string]interface{}
// @Router /guests/{id} [get]
func (h *GuestHandler) GetGuest(c *gin.Context) {
	guest, err := h.visitService.GetGuest(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get guest")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get guest"})
		return
	}

	c.JSON(http.StatusOK, guest)
}

// CreateGuest registers a guest manually
// @Summary Create guest
// @Tags Guests
// @Accept json
// @Produce json
// @Param guest body models.CreateGuestRequest true "Guest details"
// @Success 201 {object} models.Guest
// @Failure 400 {object} map[string]interface{}
// @Router /guests [post]
func (h *GuestHandler) CreateGuest(c *gin.Context) {
	var req models.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	guest, err := h.visitService.CreateGuest(&req, models.ActorReceptionist, requestMeta(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to create guest")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"guest_id":   guest.ID,
		"guest_name": guest.DisplayName(),
	}).Info("Guest created manually")

	c.JSON(http.StatusCreated, guest)
}

// UpdateStatus transitions a guest to a new status
// @Summary Update guest status
// @Tags Guests
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Param status body models.UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /guests/{id}/status [put]
func (h *GuestHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status value", "status": req.Status})
		return
	}

	guest, results, err := h.visitService.UpdateStatus(c.Param("id"), req.Status, req.Notes, models.ActorAPI, requestMeta(c))
	if err != nil {
		if errors.Is(err, database.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update guest status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guest":         guest,
		"notifications": notificationOutcomes(results),
	})
}

// CheckIn marks a guest as checked in
// @Summary Check a guest in
// @Tags Guests
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /guests/{id}/check-in [post]
func (h *GuestHandler) CheckIn(c *gin.Context) {
	guest, results, err := h.visitService.CheckIn(c.Param("id"), models.ActorReceptionist, requestMeta(c))
	if err != nil {
		if errors.Is(err, database.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to check guest in")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check guest in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guest":         guest,
		"notifications": notificationOutcomes(results),
	})
}

// CheckOut marks a guest as checked out
// @Summary Check a guest out
// @Tags Guests
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /guests/{id}/check-out [post]
func (h *GuestHandler) CheckOut(c *gin.Context) {
	guest, results, err := h.visitService.CheckOut(c.Param("id"), models.ActorReceptionist, requestMeta(c))
	if err != nil {
		if errors.Is(err, database.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to check guest out")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check guest out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guest":         guest,
		"notifications": notificationOutcomes(results),
	})
}

// notifyRequest carries an optional custom message for manual sends
type notifyRequest struct {
	Message string `json:"message"`
}

// NotifyHost sends an on-demand alert to the guest's host
// @Summary Notify host
// @Tags Guests
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /guests/{id}/notify-host [post]
func (h *GuestHandler) NotifyHost(c *gin.Context) {
	var req notifyRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.visitService.NotifyHost(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		if errors.Is(err, database.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to notify host")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to notify host"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notificationOutcome(result)})
}

// SendSMS sends a custom message to a guest
// @Summary Send SMS to guest
// @Tags Guests
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /guests/{id}/sms [post]
func (h *GuestHandler) SendSMS(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	result, err := h.visitService.SendSMSToGuest(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		if errors.Is(err, database.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to send SMS")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send SMS"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notificationOutcome(result)})
}

// GetStats returns the dashboard summary
// @Summary Visit statistics
// @Tags Guests
// @Produce json
// @Success 200 {object} services.VisitStats
// @Router /guests/stats [get]
func (h *GuestHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Summary()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// TodayGuests lists guests visiting today
// @Summary Today's guests
// @Tags Guests
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /guests/today [get]
func (h *GuestHandler) TodayGuests(c *gin.Context) {
	guests, err := h.statsService.TodayGuests()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list today's guests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list today's guests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guests": guests, "count": len(guests)})
}

// CheckedInGuests lists guests currently in the office
// @Summary Checked-in guests
// @Tags Guests
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /guests/checked-in [get]
func (h *GuestHandler) CheckedInGuests(c *gin.Context) {
	guests, err := h.statsService.CheckedInGuests()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list checked-in guests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list checked-in guests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guests": guests, "count": len(guests)})
}

// GetGuestAudit returns the audit trail for one guest
// @Summary Guest audit trail
// @Tags Guests
// @Produce json
// @Param id path string true "Guest ID"
// @Param limit query int false "Maximum records" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /guests/{id}/audit [get]
func (h *GuestHandler) GetGuestAudit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	records, err := h.auditService.GetGuestHistory(c.Param("id"), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get guest audit trail")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit trail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// notificationOutcome converts one channel result to a response shape
func notificationOutcome(result services.ChannelResult) gin.H {
	outcome := gin.H{
		"channel": result.Channel,
		"success": result.Success,
	}
	if result.Err != nil {
		outcome["error"] = result.Err.Error()
	}
	return outcome
}

// notificationOutcomes converts channel results to a response shape
func notificationOutcomes(results []services.ChannelResult) []gin.H {
	outcomes := make([]gin.H, 0, len(results))
	for _, result := range results {
		outcomes = append(outcomes, notificationOutcome(result))
	}
	return outcomes
}
