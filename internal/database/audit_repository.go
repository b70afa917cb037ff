package database

import (
	"fmt"

	"github.com/visitordesk/checkin-backend/internal/models"
)

// AuditRepository handles database operations for the audit_log table.
// The table is append-only; there are no update or delete operations.
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts one audit record
func (r *AuditRepository) Append(record *models.AuditRecord) error {
	query := `
		INSERT INTO audit_log (
			timestamp, guest_id, guest_name, action,
			previous_status, new_status, performed_by, notes, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		record.Timestamp, record.GuestID, record.GuestName, record.Action,
		record.PreviousStatus, record.NewStatus, record.PerformedBy,
		record.Notes, record.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

// ListByGuest retrieves audit records for one guest, newest first. Ordering
// ties on timestamp are broken by insertion order.
func (r *AuditRepository) ListByGuest(guestID string, limit int) ([]models.AuditRecord, error) {
	query := `
		SELECT id, timestamp, guest_id, guest_name, action,
			   previous_status, new_status, performed_by, notes, ip_address
		FROM audit_log
		WHERE guest_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`

	records := []models.AuditRecord{}
	if err := r.db.Select(&records, query, guestID, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit records for guest %s: %w", guestID, err)
	}

	return records, nil
}

// ListRecent retrieves the most recent audit records across all guests
func (r *AuditRepository) ListRecent(limit int) ([]models.AuditRecord, error) {
	query := `
		SELECT id, timestamp, guest_id, guest_name, action,
			   previous_status, new_status, performed_by, notes, ip_address
		FROM audit_log
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`

	records := []models.AuditRecord{}
	if err := r.db.Select(&records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent audit records: %w", err)
	}

	return records, nil
}
