package services

import (
	"strings"
	"time"

	"github.com/visitordesk/checkin-backend/internal/models"
)

// consentCandidateFields are the field names checked for an SMS consent
// answer, in priority order. The list covers the naming conventions the
// registration form has used over time.
var consentCandidateFields = []string{
	"smsConsent",
	"sms_consent",
	"smsNotifications",
	"sms_notifications",
	"textConsent",
	"text_consent",
	"consent",
}

// ConsentService determines and permanently records whether a guest gave
// SMS consent. Consent is tracked for compliance independent of whether
// any message is ever sent, and is always a definite boolean: no matching
// field means declined, never unknown.
type ConsentService struct {
	audit *AuditService
}

// NewConsentService creates a new consent service
func NewConsentService(audit *AuditService) *ConsentService {
	return &ConsentService{
		audit: audit,
	}
}

// Apply resolves the consent decision from the normalized submission,
// stamps it onto the guest exactly once, and writes the dedicated audit
// record. The record is written whether consent was given or declined,
// and whether or not the guest left a phone number.
func (s *ConsentService) Apply(sub *models.NormalizedSubmission, meta RequestMeta) bool {
	consented := resolveConsent(sub.Fields)

	now := time.Now().UTC()
	sub.Guest.SMSConsentGiven = consented
	sub.Guest.SMSConsentTimestamp = &now

	s.audit.RecordSMSConsent(sub.Guest, consented, models.ActorFormSubmission, meta)

	return consented
}

// resolveConsent takes the first non-empty candidate field and coerces it
// to a boolean. Absence of every candidate means no consent.
func resolveConsent(fields map[string]string) bool {
	for _, candidate := range consentCandidateFields {
		if value, ok := lookupFold(fields, candidate); ok && value != "" {
			return coerceBool(value)
		}
	}
	return false
}

// lookupFold finds a field by case-insensitive name
func lookupFold(fields map[string]string, name string) (string, bool) {
	if value, ok := fields[name]; ok {
		return value, true
	}
	for key, value := range fields {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

// coerceBool treats any non-empty value as consent unless it is an
// explicit negative
func coerceBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "no", "0", "off", "declined":
		return false
	default:
		return true
	}
}
