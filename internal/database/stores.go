package database

import (
	"errors"

	"github.com/visitordesk/checkin-backend/internal/models"
)

// ErrGuestNotFound indicates a guest ID did not resolve to a stored record
var ErrGuestNotFound = errors.New("guest not found")

// GuestStore is the storage contract the core needs from the guest
// collection. The backing implementation (Postgres table, in-memory slice)
// is irrelevant to the callers.
type GuestStore interface {
	Append(guest *models.Guest) error
	FindByID(id string) (*models.Guest, error)
	ListAll() ([]models.Guest, error)
	Update(guest *models.Guest) error
}

// AuditStore is the storage contract for the append-only audit collection.
// Records are never updated or deleted through this interface.
type AuditStore interface {
	Append(record *models.AuditRecord) error
	ListByGuest(guestID string, limit int) ([]models.AuditRecord, error)
	ListRecent(limit int) ([]models.AuditRecord, error)
}
