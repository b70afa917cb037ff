package models

import "time"

// Audit action taxonomy. Every state-affecting action appends exactly one
// record with one of these actions.
const (
	AuditActionGuestCreated     = "GUEST_CREATED"
	AuditActionFormSubmitted    = "FORM_SUBMITTED"
	AuditActionStatusUpdated    = "STATUS_UPDATED"
	AuditActionConsentRecorded  = "SMS_CONSENT_RECORDED"
	AuditActionSMSReceived      = "SMS_RECEIVED"
	AuditActionSlackInteraction = "SLACK_INTERACTION"
)

// Consent outcomes recorded in the NewStatus column of consent audit rows
const (
	ConsentOutcomeConsented = "CONSENTED"
	ConsentOutcomeDeclined  = "DECLINED"
)

// AuditRecord is one append-only log entry. GuestName is a denormalized
// snapshot so the log stays readable even if the guest record changes later.
// Records are never mutated or deleted after append.
type AuditRecord struct {
	ID             int64     `json:"id" db:"id"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	GuestID        string    `json:"guest_id" db:"guest_id"`
	GuestName      string    `json:"guest_name" db:"guest_name"`
	Action         string    `json:"action" db:"action"`
	PreviousStatus string    `json:"previous_status" db:"previous_status"`
	NewStatus      string    `json:"new_status" db:"new_status"`
	PerformedBy    string    `json:"performed_by" db:"performed_by"`
	Notes          string    `json:"notes" db:"notes"`
	IPAddress      string    `json:"ip_address" db:"ip_address"`
}
