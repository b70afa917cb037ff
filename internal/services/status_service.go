package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
)

// StatusService owns the guest lifecycle status. Every change goes through
// Transition; direct field edits bypassing it are a design violation.
//
// Transitions on the same guest are serialized through a per-guest lock so
// concurrent requests cannot interleave their read-modify-write cycles.
// Requests for different guests do not contend.
type StatusService struct {
	guests database.GuestStore

	mu    sync.Mutex
	locks map[string]*guestLock
}

// guestLock is a per-guest serialization lock with a holder count so the
// entry can be evicted from the map once the last caller releases it.
type guestLock struct {
	mu   sync.Mutex
	refs int
}

// NewStatusService creates a new status service
func NewStatusService(guests database.GuestStore) *StatusService {
	return &StatusService{
		guests: guests,
		locks:  make(map[string]*guestLock),
	}
}

// acquireLock returns the serialization lock for one guest ID, creating it
// on first use
func (s *StatusService) acquireLock(guestID string) *guestLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[guestID]
	if !ok {
		lock = &guestLock{}
		s.locks[guestID] = lock
	}
	lock.refs++
	return lock
}

// releaseLock drops one holder and removes the map entry when nobody else
// holds or waits on it, so the map stays bounded by in-flight transitions
// rather than growing with every guest ever seen
func (s *StatusService) releaseLock(guestID string, lock *guestLock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, guestID)
	}
}

// Transition sets a guest's status and returns the event capturing the
// prior value. Any status may be set directly; the machine enforces only
// the time bookkeeping, not an ordering graph, so an administrative update
// can skip states. Re-entering the current status is a no-op transition
// that still bumps UpdatedAt.
//
// Returns database.ErrGuestNotFound when the ID does not resolve.
func (s *StatusService) Transition(guestID string, newStatus models.Status, notes, performedBy string) (*models.Guest, *models.TransitionEvent, error) {
	if !newStatus.IsValid() {
		return nil, nil, fmt.Errorf("invalid status %q", newStatus)
	}

	lock := s.acquireLock(guestID)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		s.releaseLock(guestID, lock)
	}()

	guest, err := s.guests.FindByID(guestID)
	if err != nil {
		return nil, nil, err
	}

	event := guest.ApplyTransition(newStatus, time.Now().UTC())
	event.Notes = notes
	event.PerformedBy = performedBy

	if err := s.guests.Update(guest); err != nil {
		return nil, nil, fmt.Errorf("failed to persist status change: %w", err)
	}

	return guest, &event, nil
}
