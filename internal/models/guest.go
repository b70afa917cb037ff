package models

import (
	"strings"
	"time"
)

// Status represents the lifecycle status of a guest visit
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusCheckedIn  Status = "checked-in"
	StatusWithHost   Status = "with-host"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every wire-stable status value
var AllStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusCheckedIn,
	StatusWithHost,
	StatusCheckedOut,
	StatusCancelled,
}

// IsValid checks whether the status is one of the known values
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the visit lifecycle
func (s Status) IsTerminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// Actor tags for transition and audit events
const (
	ActorFormSubmission = "GUEST_FORM_SUBMISSION"
	ActorReceptionist   = "RECEPTIONIST"
	ActorAPI            = "API"
	ActorSystem         = "SYSTEM"
)

// Guest represents one visit by one guest
type Guest struct {
	ID                  string     `json:"id" db:"id"`
	FullName            string     `json:"full_name" db:"full_name"`
	FirstName           string     `json:"first_name" db:"first_name"`
	LastName            string     `json:"last_name" db:"last_name"`
	Email               string     `json:"email" db:"email"`
	PhoneNumber         string     `json:"phone_number" db:"phone_number"`
	Company             string     `json:"company" db:"company"`
	Title               string     `json:"title" db:"title"`
	HostName            string     `json:"host_name" db:"host_name"`
	HostEmail           string     `json:"host_email" db:"host_email"`
	HostPhone           string     `json:"host_phone" db:"host_phone"`
	PurposeOfVisit      string     `json:"purpose_of_visit" db:"purpose_of_visit"`
	ExpectedDuration    string     `json:"expected_duration" db:"expected_duration"`
	SpecialRequirements string     `json:"special_requirements" db:"special_requirements"`
	VisitDate           string     `json:"visit_date" db:"visit_date"`
	Status              Status     `json:"status" db:"status"`
	SMSConsentGiven     bool       `json:"sms_consent_given" db:"sms_consent_given"`
	SMSConsentTimestamp *time.Time `json:"sms_consent_timestamp,omitempty" db:"sms_consent_timestamp"`
	NotifySlack         bool       `json:"notify_slack" db:"notify_slack"`
	CheckInTime         *time.Time `json:"check_in_time,omitempty" db:"check_in_time"`
	CheckOutTime        *time.Time `json:"check_out_time,omitempty" db:"check_out_time"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// TransitionEvent captures one status change before it overwrites state
type TransitionEvent struct {
	GuestID        string    `json:"guest_id"`
	PreviousStatus Status    `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	PerformedBy    string    `json:"performed_by"`
	Notes          string    `json:"notes"`
	Timestamp      time.Time `json:"timestamp"`
}

// NoOp reports whether the transition re-entered the already-current status
func (e *TransitionEvent) NoOp() bool {
	return e.PreviousStatus == e.NewStatus
}

// CreateGuestRequest represents the request to create a guest manually
type CreateGuestRequest struct {
	FullName            string `json:"full_name"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	PhoneNumber         string `json:"phone_number"`
	Company             string `json:"company"`
	Title               string `json:"title"`
	HostName            string `json:"host_name" binding:"required"`
	HostEmail           string `json:"host_email"`
	HostPhone           string `json:"host_phone"`
	PurposeOfVisit      string `json:"purpose_of_visit" binding:"required"`
	ExpectedDuration    string `json:"expected_duration"`
	SpecialRequirements string `json:"special_requirements"`
	VisitDate           string `json:"visit_date"`
}

// UpdateStatusRequest represents the request to update a guest's status
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// DisplayName returns the guest's name for notifications and audit snapshots
func (g *Guest) DisplayName() string {
	name := strings.TrimSpace(g.FirstName + " " + g.LastName)
	if name == "" {
		name = g.FullName
	}
	return name
}

// ApplyTransition overwrites the guest's status and performs the transition
// bookkeeping: UpdatedAt always bumps, CheckInTime is set once on the first
// checked-in transition, CheckOutTime is set on checked-out.
func (g *Guest) ApplyTransition(newStatus Status, at time.Time) TransitionEvent {
	event := TransitionEvent{
		GuestID:        g.ID,
		PreviousStatus: g.Status,
		NewStatus:      newStatus,
		Timestamp:      at,
	}

	g.Status = newStatus
	g.UpdatedAt = at

	switch newStatus {
	case StatusCheckedIn:
		if g.CheckInTime == nil {
			t := at
			g.CheckInTime = &t
		}
	case StatusCheckedOut:
		t := at
		g.CheckOutTime = &t
	}

	return event
}

// SplitFullName derives first and last name from a full name. The first
// whitespace-separated token is the first name and everything after it is the
// last name. Empty input yields empty names.
func SplitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
