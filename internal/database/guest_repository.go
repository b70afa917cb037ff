package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/visitordesk/checkin-backend/internal/models"
)

// GuestRepository handles database operations for the guests table
type GuestRepository struct {
	db DB
}

// NewGuestRepository creates a new GuestRepository
func NewGuestRepository(db DB) *GuestRepository {
	return &GuestRepository{db: db}
}

const guestColumns = `
	id, full_name, first_name, last_name, email, phone_number,
	company, title, host_name, host_email, host_phone,
	purpose_of_visit, expected_duration, special_requirements,
	visit_date, status, sms_consent_given, sms_consent_timestamp,
	notify_slack, check_in_time, check_out_time, created_at, updated_at
`

// Append inserts a new guest record
func (r *GuestRepository) Append(guest *models.Guest) error {
	query := `
		INSERT INTO guests (
			id, full_name, first_name, last_name, email, phone_number,
			company, title, host_name, host_email, host_phone,
			purpose_of_visit, expected_duration, special_requirements,
			visit_date, status, sms_consent_given, sms_consent_timestamp,
			notify_slack, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := r.db.Exec(
		query,
		guest.ID, guest.FullName, guest.FirstName, guest.LastName,
		guest.Email, guest.PhoneNumber, guest.Company, guest.Title,
		guest.HostName, guest.HostEmail, guest.HostPhone,
		guest.PurposeOfVisit, guest.ExpectedDuration, guest.SpecialRequirements,
		guest.VisitDate, guest.Status, guest.SMSConsentGiven, guest.SMSConsentTimestamp,
		guest.NotifySlack, guest.CreatedAt, guest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert guest: %w", err)
	}

	return nil
}

// FindByID retrieves a guest by ID
func (r *GuestRepository) FindByID(id string) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`

	var guest models.Guest
	if err := r.db.Get(&guest, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to get guest %s: %w", id, err)
	}

	return &guest, nil
}

// ListAll retrieves all guest records, newest first
func (r *GuestRepository) ListAll() ([]models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests ORDER BY created_at DESC`

	guests := []models.Guest{}
	if err := r.db.Select(&guests, query); err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	return guests, nil
}

// Update writes the mutable fields of a guest record back to the table.
// Identity fields and created_at are immutable after append.
func (r *GuestRepository) Update(guest *models.Guest) error {
	query := `
		UPDATE guests
		SET status = $2, sms_consent_given = $3, sms_consent_timestamp = $4,
			notify_slack = $5, check_in_time = $6, check_out_time = $7,
			host_phone = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(
		query,
		guest.ID, guest.Status, guest.SMSConsentGiven, guest.SMSConsentTimestamp,
		guest.NotifySlack, guest.CheckInTime, guest.CheckOutTime,
		guest.HostPhone, guest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update guest %s: %w", guest.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrGuestNotFound
	}

	return nil
}
