package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
	"github.com/visitordesk/checkin-backend/pkg/sms"
)

// VisitService orchestrates the guest visit pipeline: normalize, record
// consent, persist, transition, fan out notifications and write the audit
// trail. Persistence failures are hard errors; notification and audit
// failures degrade to logged outcomes so a guest standing at reception is
// never blocked by an integration outage.
type VisitService struct {
	normalizer *NormalizerService
	consent    *ConsentService
	status     *StatusService
	notifier   *NotificationService
	audit      *AuditService
	guests     database.GuestStore
}

// NewVisitService creates a new visit service
func NewVisitService(
	normalizer *NormalizerService,
	consent *ConsentService,
	status *StatusService,
	notifier *NotificationService,
	audit *AuditService,
	guests database.GuestStore,
) *VisitService {
	return &VisitService{
		normalizer: normalizer,
		consent:    consent,
		status:     status,
		notifier:   notifier,
		audit:      audit,
		guests:     guests,
	}
}

// ProcessSubmission runs one inbound form submission through the full
// pipeline. The guest is persisted before any notification goes out; the
// channel results are returned for logging, never as a failure reason.
func (s *VisitService) ProcessSubmission(sub *models.RawSubmission) (*models.Guest, []ChannelResult, error) {
	normalized, err := s.normalizer.Normalize(sub)
	if err != nil {
		return nil, nil, err
	}

	meta := RequestMeta{IPAddress: sub.IPAddress, UserAgent: sub.UserAgent}
	s.consent.Apply(normalized, meta)

	guest := normalized.Guest
	if err := s.guests.Append(guest); err != nil {
		return nil, nil, fmt.Errorf("failed to persist guest: %w", err)
	}

	s.audit.RecordFormSubmitted(guest, normalized.SubmissionID, meta)

	results := s.notifier.DispatchArrival(guest)

	logrus.WithFields(logrus.Fields{
		"guest_id":   guest.ID,
		"guest_name": guest.DisplayName(),
		"consent":    guest.SMSConsentGiven,
		"channels":   len(results),
	}).Info("Form submission processed")

	return guest, results, nil
}

// CreateGuest registers a guest manually, outside the form flow
func (s *VisitService) CreateGuest(req *models.CreateGuestRequest, performedBy string, meta RequestMeta) (*models.Guest, error) {
	now := time.Now().UTC()

	guest := &models.Guest{
		FullName:            req.FullName,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		PhoneNumber:         req.PhoneNumber,
		Company:             req.Company,
		Title:               req.Title,
		HostName:            req.HostName,
		HostEmail:           req.HostEmail,
		HostPhone:           req.HostPhone,
		PurposeOfVisit:      req.PurposeOfVisit,
		ExpectedDuration:    req.ExpectedDuration,
		SpecialRequirements: req.SpecialRequirements,
		VisitDate:           req.VisitDate,
		Status:              models.StatusPending,
		NotifySlack:         true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if guest.FullName == "" {
		guest.FullName = strings.TrimSpace(guest.FirstName + " " + guest.LastName)
	}
	if guest.FirstName == "" && guest.LastName == "" {
		guest.FirstName, guest.LastName = models.SplitFullName(guest.FullName)
	}
	if guest.VisitDate == "" {
		guest.VisitDate = now.Format("2006-01-02")
	}
	guest.ID = generateGuestID("", now)

	if err := s.guests.Append(guest); err != nil {
		return nil, fmt.Errorf("failed to persist guest: %w", err)
	}

	s.audit.RecordGuestCreated(guest, performedBy, meta)

	return guest, nil
}

// UpdateStatus transitions a guest and drives the downstream fan-out.
// Channel outcomes never fail the request; a failed send is a logged
// result, not a reason to undo the transition.
func (s *VisitService) UpdateStatus(guestID string, newStatus models.Status, notes, performedBy string, meta RequestMeta) (*models.Guest, []ChannelResult, error) {
	guest, event, err := s.status.Transition(guestID, newStatus, notes, performedBy)
	if err != nil {
		return nil, nil, err
	}

	s.audit.RecordStatusUpdated(guest, event.PreviousStatus, performedBy, notes, meta)

	results := s.notifier.DispatchTransition(guest, event)

	return guest, results, nil
}

// CheckIn marks a guest as checked in
func (s *VisitService) CheckIn(guestID, performedBy string, meta RequestMeta) (*models.Guest, []ChannelResult, error) {
	return s.UpdateStatus(guestID, models.StatusCheckedIn, "Guest checked in at reception", performedBy, meta)
}

// CheckOut marks a guest as checked out
func (s *VisitService) CheckOut(guestID, performedBy string, meta RequestMeta) (*models.Guest, []ChannelResult, error) {
	return s.UpdateStatus(guestID, models.StatusCheckedOut, "Guest checked out", performedBy, meta)
}

// GetGuest fetches one guest by ID
func (s *VisitService) GetGuest(guestID string) (*models.Guest, error) {
	return s.guests.FindByID(guestID)
}

// ListGuests returns every guest, newest first
func (s *VisitService) ListGuests() ([]models.Guest, error) {
	return s.guests.ListAll()
}

// NotifyHost sends an on-demand alert to a guest's host
func (s *VisitService) NotifyHost(ctx context.Context, guestID, message string) (ChannelResult, error) {
	guest, err := s.guests.FindByID(guestID)
	if err != nil {
		return ChannelResult{}, err
	}
	return s.notifier.NotifyHost(ctx, guest, message), nil
}

// SendSMSToGuest sends a custom message to a guest, honoring consent
func (s *VisitService) SendSMSToGuest(ctx context.Context, guestID, message string) (ChannelResult, error) {
	guest, err := s.guests.FindByID(guestID)
	if err != nil {
		return ChannelResult{}, err
	}
	return s.notifier.SendGuestSMS(ctx, guest, message), nil
}

// HandleInboundSMS answers an incoming guest SMS and records it. The
// sender is matched to a guest by phone number when possible; unmatched
// senders are still answered and audited.
func (s *VisitService) HandleInboundSMS(ctx context.Context, from, body string) (string, error) {
	reply, result := s.notifier.ReplyToInboundSMS(ctx, from, body)
	if result.Err != nil {
		logrus.WithFields(logrus.Fields{
			"from":  from,
			"error": result.Err.Error(),
		}).Warn("Failed to send SMS auto-reply")
	}

	guest := s.findGuestByPhone(from)
	s.audit.RecordSMSReceived(guest, from, body, reply)

	return reply, nil
}

// RecordSlackAction audits a button action taken on a channel message
func (s *VisitService) RecordSlackAction(guestID, action, slackUser string) error {
	guest, err := s.guests.FindByID(guestID)
	if err != nil {
		return err
	}
	s.audit.RecordSlackInteraction(guest, action, slackUser)
	return nil
}

// findGuestByPhone matches a sender to the most recent guest with that
// phone number. Numbers are compared in normalized form.
func (s *VisitService) findGuestByPhone(phone string) *models.Guest {
	formatted, err := sms.FormatPhoneNumber(phone)
	if err != nil {
		return nil
	}

	guests, err := s.guests.ListAll()
	if err != nil {
		return nil
	}

	for i := range guests {
		stored, err := sms.FormatPhoneNumber(guests[i].PhoneNumber)
		if err == nil && stored == formatted {
			return &guests[i]
		}
	}
	return nil
}
