package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/internal/utils"
)

// AuditService writes guest lifecycle events to the audit trail.
// Audit failures are logged and swallowed so that a broken trail
// never blocks a check-in or a status change.
type AuditService struct {
	store database.AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store database.AuditStore) *AuditService {
	return &AuditService{
		store: store,
	}
}

// RequestMeta carries client metadata captured from the originating request
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// deviceNote renders parsed device information for the notes column
func (m RequestMeta) deviceNote() string {
	if m.UserAgent == "" {
		return ""
	}
	info := utils.ParseUserAgent(m.UserAgent)
	return fmt.Sprintf("%s on %s (%s)", info.Browser, info.OS, info.DeviceType)
}

// RecordGuestCreated logs the manual creation of a guest record
func (s *AuditService) RecordGuestCreated(guest *models.Guest, performedBy string, meta RequestMeta) {
	s.record(models.AuditRecord{
		GuestID:     guest.ID,
		GuestName:   guest.DisplayName(),
		Action:      models.AuditActionGuestCreated,
		NewStatus:   string(guest.Status),
		PerformedBy: performedBy,
		Notes:       meta.deviceNote(),
		IPAddress:   meta.IPAddress,
	})
}

// RecordFormSubmitted logs an inbound registration form submission
func (s *AuditService) RecordFormSubmitted(guest *models.Guest, submissionID string, meta RequestMeta) {
	notes := fmt.Sprintf("submission %s", submissionID)
	if device := meta.deviceNote(); device != "" {
		notes = fmt.Sprintf("%s, %s", notes, device)
	}

	s.record(models.AuditRecord{
		GuestID:     guest.ID,
		GuestName:   guest.DisplayName(),
		Action:      models.AuditActionFormSubmitted,
		NewStatus:   string(guest.Status),
		PerformedBy: models.ActorFormSubmission,
		Notes:       notes,
		IPAddress:   meta.IPAddress,
	})
}

// RecordStatusUpdated logs a status transition with both sides of the change
func (s *AuditService) RecordStatusUpdated(guest *models.Guest, previous models.Status, performedBy, notes string, meta RequestMeta) {
	s.record(models.AuditRecord{
		GuestID:        guest.ID,
		GuestName:      guest.DisplayName(),
		Action:         models.AuditActionStatusUpdated,
		PreviousStatus: string(previous),
		NewStatus:      string(guest.Status),
		PerformedBy:    performedBy,
		Notes:          notes,
		IPAddress:      meta.IPAddress,
	})
}

// RecordSMSConsent logs a consent decision. Both grants and declines are
// recorded so the trail shows what every guest answered.
func (s *AuditService) RecordSMSConsent(guest *models.Guest, consented bool, performedBy string, meta RequestMeta) {
	outcome := models.ConsentOutcomeDeclined
	if consented {
		outcome = models.ConsentOutcomeConsented
	}

	s.record(models.AuditRecord{
		GuestID:     guest.ID,
		GuestName:   guest.DisplayName(),
		Action:      models.AuditActionConsentRecorded,
		NewStatus:   outcome,
		PerformedBy: performedBy,
		Notes:       fmt.Sprintf("phone: %s", guest.PhoneNumber),
		IPAddress:   meta.IPAddress,
	})
}

// RecordSMSReceived logs an inbound SMS from a guest phone number
func (s *AuditService) RecordSMSReceived(guest *models.Guest, from, body, reply string) {
	guestID := ""
	guestName := from
	if guest != nil {
		guestID = guest.ID
		guestName = guest.DisplayName()
	}

	s.record(models.AuditRecord{
		GuestID:     guestID,
		GuestName:   guestName,
		Action:      models.AuditActionSMSReceived,
		PerformedBy: models.ActorSystem,
		Notes:       fmt.Sprintf("from %s: %q, replied: %q", from, body, reply),
	})
}

// RecordSlackInteraction logs a button action taken from a channel message
func (s *AuditService) RecordSlackInteraction(guest *models.Guest, action, slackUser string) {
	s.record(models.AuditRecord{
		GuestID:     guest.ID,
		GuestName:   guest.DisplayName(),
		Action:      models.AuditActionSlackInteraction,
		NewStatus:   string(guest.Status),
		PerformedBy: slackUser,
		Notes:       fmt.Sprintf("action: %s", action),
	})
}

// GetGuestHistory retrieves the audit trail for one guest, newest first
func (s *AuditService) GetGuestHistory(guestID string, limit int) ([]models.AuditRecord, error) {
	records, err := s.store.ListByGuest(guestID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest history: %w", err)
	}
	return records, nil
}

// GetRecentRecords retrieves the most recent audit records across all guests
func (s *AuditService) GetRecentRecords(limit int) ([]models.AuditRecord, error) {
	records, err := s.store.ListRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent audit records: %w", err)
	}
	return records, nil
}

// record stamps and appends one audit record. Append failures are logged
// at warning level and never surfaced to the caller.
func (s *AuditService) record(rec models.AuditRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := s.store.Append(&rec); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":   rec.Action,
			"guest_id": rec.GuestID,
			"error":    err.Error(),
		}).Warn("Failed to append audit record")
	}
}
