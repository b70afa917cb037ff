package database

import (
	"sort"
	"sync"

	"github.com/visitordesk/checkin-backend/internal/models"
)

// MemoryGuestStore is an in-memory GuestStore implementation used in
// development mode and in tests. It satisfies the same contract as
// GuestRepository rather than branching inside the Postgres code path.
type MemoryGuestStore struct {
	mu     sync.RWMutex
	guests map[string]models.Guest
	order  []string
}

// NewMemoryGuestStore creates an empty in-memory guest store
func NewMemoryGuestStore() *MemoryGuestStore {
	return &MemoryGuestStore{
		guests: make(map[string]models.Guest),
	}
}

// Append stores a new guest record
func (s *MemoryGuestStore) Append(guest *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.guests[guest.ID]; !exists {
		s.order = append(s.order, guest.ID)
	}
	s.guests[guest.ID] = *guest
	return nil
}

// FindByID retrieves a guest by ID
func (s *MemoryGuestStore) FindByID(id string) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guest, ok := s.guests[id]
	if !ok {
		return nil, ErrGuestNotFound
	}
	found := guest
	return &found, nil
}

// ListAll returns all guests, newest first
func (s *MemoryGuestStore) ListAll() ([]models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guests := make([]models.Guest, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		guests = append(guests, s.guests[s.order[i]])
	}
	return guests, nil
}

// Update overwrites an existing guest record
func (s *MemoryGuestStore) Update(guest *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.guests[guest.ID]; !ok {
		return ErrGuestNotFound
	}
	s.guests[guest.ID] = *guest
	return nil
}

// MemoryAuditStore is an in-memory append-only AuditStore implementation
type MemoryAuditStore struct {
	mu      sync.RWMutex
	records []models.AuditRecord
	nextID  int64
}

// NewMemoryAuditStore creates an empty in-memory audit store
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{nextID: 1}
}

// Append stores one audit record
func (s *MemoryAuditStore) Append(record *models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.ID = s.nextID
	s.nextID++
	s.records = append(s.records, stored)
	return nil
}

// ListByGuest returns records for one guest, newest first
func (s *MemoryAuditStore) ListByGuest(guestID string, limit int) ([]models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.AuditRecord{}
	for _, record := range s.records {
		if record.GuestID == guestID {
			matched = append(matched, record)
		}
	}
	return sortAndLimit(matched, limit), nil
}

// ListRecent returns the most recent records across all guests
func (s *MemoryAuditStore) ListRecent(limit int) ([]models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.AuditRecord, len(s.records))
	copy(all, s.records)
	return sortAndLimit(all, limit), nil
}

// All returns every stored record in insertion order. Test helper.
func (s *MemoryAuditStore) All() []models.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.AuditRecord, len(s.records))
	copy(all, s.records)
	return all
}

func sortAndLimit(records []models.AuditRecord, limit int) []models.AuditRecord {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].ID > records[j].ID
		}
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
