package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/config"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/internal/services"
	"github.com/visitordesk/checkin-backend/internal/utils"
	"github.com/visitordesk/checkin-backend/pkg/slack"
)

// twimlEmpty is the no-op response Twilio expects for inbound messages
const twimlEmpty = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// WebhookHandler receives the inbound integrations: form provider
// submissions, Slack interactive actions and Twilio inbound SMS
type WebhookHandler struct {
	visitService *services.VisitService
	slackConfig  config.SlackConfig
	logger       *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(visitService *services.VisitService, slackConfig config.SlackConfig, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		visitService: visitService,
		slackConfig:  slackConfig,
		logger:       logger,
	}
}

// HandleFormSubmission processes a guest registration webhook
// @Summary Receive form submission
// @Description Process a registration form webhook in any supported payload shape
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /webhooks/form [post]
func (h *WebhookHandler) HandleFormSubmission(c *gin.Context) {
	sub := &models.RawSubmission{
		CorrelationID: c.GetHeader("X-Request-ID"),
		IPAddress:     utils.GetRealIP(c),
		UserAgent:     utils.GetUserAgent(c),
	}

	contentType := c.ContentType()
	switch {
	case strings.Contains(contentType, "application/json"):
		if err := c.ShouldBindJSON(&sub.Body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
			return
		}
	default:
		// Form-encoded webhooks carry the submission in a rawRequest field
		if raw := c.PostForm("rawRequest"); raw != "" {
			sub.RawRequest = raw
		} else {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to read request body"})
				return
			}
			sub.RawRequest = string(body)
		}
	}

	guest, results, err := h.visitService.ProcessSubmission(sub)
	if err != nil {
		if errors.Is(err, services.ErrMalformedSubmission) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Failed to process submission",
				"details": err.Error(),
			})
			return
		}
		h.logger.WithError(err).Error("Form submission processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"guest_id":   guest.ID,
		"guest_name": guest.DisplayName(),
		"channels":   channelSummary(results),
	}).Info("Form submission webhook processed")

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Submission processed successfully",
		"guest_id": guest.ID,
	})
}

// slackInteractionPayload is the subset of the interaction payload we read
type slackInteractionPayload struct {
	Type string `json:"type"`
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
}

// HandleSlackInteraction processes a button action from a channel message
// @Summary Receive Slack interaction
// @Description Verify and process an interactive action from the team channel
// @Tags Webhooks
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /webhooks/slack [post]
func (h *WebhookHandler) HandleSlackInteraction(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to read request body"})
		return
	}

	if h.slackConfig.SigningSecret != "" {
		timestamp := c.GetHeader("X-Slack-Request-Timestamp")
		signature := c.GetHeader("X-Slack-Signature")
		if err := slack.VerifySignature(h.slackConfig.SigningSecret, timestamp, signature, body); err != nil {
			h.logger.WithError(err).Warn("Slack signature verification failed")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid signature"})
			return
		}
	}

	values, err := parseFormBody(string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid form body"})
		return
	}

	var payload slackInteractionPayload
	if err := json.Unmarshal([]byte(values.Get("payload")), &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid interaction payload"})
		return
	}

	if len(payload.Actions) > 0 {
		action := payload.Actions[0]
		actionType, guestID := splitActionValue(action.Value)

		if guestID != "" {
			if err := h.visitService.RecordSlackAction(guestID, actionType, payload.User.Name); err != nil {
				h.logger.WithFields(logrus.Fields{
					"guest_id": guestID,
					"action":   actionType,
					"error":    err.Error(),
				}).Warn("Failed to record Slack action")
			}
		}
	}

	// Slack expects a 200 within 3 seconds
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Interaction processed"})
}

// HandleInboundSMS processes an incoming guest SMS from Twilio
// @Summary Receive inbound SMS
// @Description Answer an incoming SMS and record it in the audit trail
// @Tags Webhooks
// @Accept x-www-form-urlencoded
// @Produce xml
// @Success 200 {string} string
// @Router /webhooks/sms [post]
func (h *WebhookHandler) HandleInboundSMS(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")

	if from == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing sender"})
		return
	}

	if _, err := h.visitService.HandleInboundSMS(c.Request.Context(), from, body); err != nil {
		h.logger.WithError(err).Error("Inbound SMS processing failed")
	}

	c.Data(http.StatusOK, "text/xml", []byte(twimlEmpty))
}

func parseFormBody(body string) (url.Values, error) {
	return url.ParseQuery(body)
}

// splitActionValue splits "acknowledge_guest_000042_17000" into the action
// type and the guest ID
func splitActionValue(value string) (actionType, guestID string) {
	parts := strings.SplitN(value, "_", 2)
	if len(parts) != 2 {
		return value, ""
	}
	return parts[0], parts[1]
}

// channelSummary renders per-channel outcomes for the request log
func channelSummary(results []services.ChannelResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		outcome := "ok"
		if !r.Success {
			outcome = "failed"
		}
		parts = append(parts, string(r.Channel)+"="+outcome)
	}
	return strings.Join(parts, ",")
}
