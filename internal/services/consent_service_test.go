package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
)

func newConsentFixture() (*ConsentService, *database.MemoryAuditStore) {
	auditStore := database.NewMemoryAuditStore()
	return NewConsentService(NewAuditService(auditStore)), auditStore
}

func TestConsentService_Apply(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		expected bool
	}{
		{"smsConsent true", map[string]string{"smsConsent": "true"}, true},
		{"checkbox collapsed value", map[string]string{"consent": "true"}, true},
		{"free text answer", map[string]string{"smsConsent": "I agree"}, true},
		{"snake case convention", map[string]string{"sms_notifications": "yes"}, true},
		{"legacy text consent field", map[string]string{"textConsent": "on"}, true},
		{"explicit false", map[string]string{"smsConsent": "false"}, false},
		{"explicit no", map[string]string{"smsConsent": "no"}, false},
		{"no matching field", map[string]string{"favoriteColor": "green"}, false},
		{"empty fields", map[string]string{}, false},
		{"empty candidate falls through to none", map[string]string{"smsConsent": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newConsentFixture()
			guest := &models.Guest{ID: "guest_000001_1", FirstName: "Ada", LastName: "Lovelace"}

			consented := service.Apply(&models.NormalizedSubmission{
				Guest:  guest,
				Fields: tt.fields,
			}, RequestMeta{})

			assert.Equal(t, tt.expected, consented)
			assert.Equal(t, tt.expected, guest.SMSConsentGiven)
			require.NotNil(t, guest.SMSConsentTimestamp)
		})
	}
}

func TestConsentService_CandidatePriorityOrder(t *testing.T) {
	service, _ := newConsentFixture()
	guest := &models.Guest{ID: "guest_000002_1"}

	// smsConsent outranks the generic consent field
	consented := service.Apply(&models.NormalizedSubmission{
		Guest: guest,
		Fields: map[string]string{
			"consent":    "true",
			"smsConsent": "no",
		},
	}, RequestMeta{})

	assert.False(t, consented)
}

func TestConsentService_AuditRecordAlwaysWritten(t *testing.T) {
	tests := []struct {
		name            string
		phone           string
		consentValue    string
		expectedOutcome string
	}{
		{"consented with phone", "5550199", "true", models.ConsentOutcomeConsented},
		{"declined with phone", "5550199", "false", models.ConsentOutcomeDeclined},
		{"consented without phone", "", "true", models.ConsentOutcomeConsented},
		{"declined without phone", "", "", models.ConsentOutcomeDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, auditStore := newConsentFixture()
			guest := &models.Guest{
				ID:          "guest_000003_1",
				FirstName:   "Bob",
				LastName:    "Smith",
				PhoneNumber: tt.phone,
			}

			service.Apply(&models.NormalizedSubmission{
				Guest:  guest,
				Fields: map[string]string{"smsConsent": tt.consentValue},
			}, RequestMeta{IPAddress: "203.0.113.7"})

			records := auditStore.All()
			require.Len(t, records, 1)
			assert.Equal(t, models.AuditActionConsentRecorded, records[0].Action)
			assert.Equal(t, tt.expectedOutcome, records[0].NewStatus)
			assert.Equal(t, models.ActorFormSubmission, records[0].PerformedBy)
			assert.Equal(t, "Bob Smith", records[0].GuestName)
			assert.Equal(t, "203.0.113.7", records[0].IPAddress)
		})
	}
}
