package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
)

type failingAuditStore struct{}

func (failingAuditStore) Append(*models.AuditRecord) error {
	return errors.New("audit store unavailable")
}

func (failingAuditStore) ListByGuest(string, int) ([]models.AuditRecord, error) {
	return nil, errors.New("audit store unavailable")
}

func (failingAuditStore) ListRecent(int) ([]models.AuditRecord, error) {
	return nil, errors.New("audit store unavailable")
}

func TestAuditService_RecordStatusUpdated(t *testing.T) {
	store := database.NewMemoryAuditStore()
	service := NewAuditService(store)

	guest := eligibleGuest()
	guest.Status = models.StatusCheckedIn

	service.RecordStatusUpdated(guest, models.StatusApproved, models.ActorReceptionist, "walked in", RequestMeta{IPAddress: "203.0.113.7"})

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, models.AuditActionStatusUpdated, records[0].Action)
	assert.Equal(t, string(models.StatusApproved), records[0].PreviousStatus)
	assert.Equal(t, string(models.StatusCheckedIn), records[0].NewStatus)
	assert.Equal(t, "Bob Smith", records[0].GuestName)
	assert.Equal(t, models.ActorReceptionist, records[0].PerformedBy)
	assert.Equal(t, "walked in", records[0].Notes)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestAuditService_FormSubmittedCarriesSubmissionID(t *testing.T) {
	store := database.NewMemoryAuditStore()
	service := NewAuditService(store)

	service.RecordFormSubmitted(eligibleGuest(), "6100000042", RequestMeta{})

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, models.AuditActionFormSubmitted, records[0].Action)
	assert.Equal(t, models.ActorFormSubmission, records[0].PerformedBy)
	assert.Contains(t, records[0].Notes, "6100000042")
}

func TestAuditService_DeviceInfoInNotes(t *testing.T) {
	store := database.NewMemoryAuditStore()
	service := NewAuditService(store)

	meta := RequestMeta{
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
	service.RecordGuestCreated(eligibleGuest(), models.ActorReceptionist, meta)

	records := store.All()
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Notes, "Chrome")
	assert.Contains(t, records[0].Notes, "desktop")
}

func TestAuditService_AppendFailureIsSwallowed(t *testing.T) {
	service := NewAuditService(failingAuditStore{})

	// None of these must panic or surface an error to the caller
	guest := eligibleGuest()
	service.RecordGuestCreated(guest, models.ActorReceptionist, RequestMeta{})
	service.RecordFormSubmitted(guest, "6100000042", RequestMeta{})
	service.RecordStatusUpdated(guest, models.StatusPending, models.ActorAPI, "", RequestMeta{})
	service.RecordSMSConsent(guest, true, models.ActorFormSubmission, RequestMeta{})
	service.RecordSMSReceived(nil, "5550333", "help", "Guest Check-in System Help")
	service.RecordSlackInteraction(guest, "acknowledge", "alice")
}

func TestAuditService_SMSReceivedWithoutGuest(t *testing.T) {
	store := database.NewMemoryAuditStore()
	service := NewAuditService(store)

	service.RecordSMSReceived(nil, "5550333", "stop", "You have been unsubscribed from check-in notifications. Reply START to resubscribe.")

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, models.AuditActionSMSReceived, records[0].Action)
	assert.Empty(t, records[0].GuestID)
	assert.Equal(t, "5550333", records[0].GuestName)
	assert.Contains(t, records[0].Notes, "stop")
}

func TestAuditService_GuestHistoryOrder(t *testing.T) {
	store := database.NewMemoryAuditStore()
	service := NewAuditService(store)

	guest := eligibleGuest()
	service.RecordFormSubmitted(guest, "6100000042", RequestMeta{})
	service.RecordSMSConsent(guest, true, models.ActorFormSubmission, RequestMeta{})
	service.RecordStatusUpdated(guest, models.StatusPending, models.ActorReceptionist, "", RequestMeta{})

	records, err := service.GetGuestHistory(guest.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first, ties broken by insertion order
	assert.Equal(t, models.AuditActionStatusUpdated, records[0].Action)
	assert.Equal(t, models.AuditActionConsentRecorded, records[1].Action)
	assert.Equal(t, models.AuditActionFormSubmitted, records[2].Action)
}
