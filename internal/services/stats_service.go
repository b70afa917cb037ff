package services

import (
	"fmt"
	"time"

	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/models"
)

// VisitStats summarizes guest activity for the dashboard
type VisitStats struct {
	TotalGuests       int                   `json:"total_guests"`
	Today             map[models.Status]int `json:"today"`
	TodayTotal        int                   `json:"today_total"`
	CurrentlyInOffice int                   `json:"currently_in_office"`
	ThisWeek          int                   `json:"this_week"`
}

// StatsService computes visit summaries from the guest collection
type StatsService struct {
	guests database.GuestStore
}

// NewStatsService creates a new stats service
func NewStatsService(guests database.GuestStore) *StatsService {
	return &StatsService{
		guests: guests,
	}
}

// Summary computes the dashboard stats as of now
func (s *StatsService) Summary() (*VisitStats, error) {
	return s.summaryAt(time.Now().UTC())
}

func (s *StatsService) summaryAt(now time.Time) (*VisitStats, error) {
	guests, err := s.guests.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	today := now.Format("2006-01-02")
	weekStart := startOfWeek(now)

	stats := &VisitStats{
		TotalGuests: len(guests),
		Today:       make(map[models.Status]int),
	}

	for i := range guests {
		guest := &guests[i]

		if guest.Status == models.StatusCheckedIn || guest.Status == models.StatusWithHost {
			stats.CurrentlyInOffice++
		}

		if guest.VisitDate == today {
			stats.Today[guest.Status]++
			stats.TodayTotal++
		}

		if visitDate, err := time.Parse("2006-01-02", guest.VisitDate); err == nil {
			if !visitDate.Before(weekStart) && !visitDate.After(now) {
				stats.ThisWeek++
			}
		}
	}

	return stats, nil
}

// TodayGuests lists the guests whose visit is dated today
func (s *StatsService) TodayGuests() ([]models.Guest, error) {
	guests, err := s.guests.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	filtered := make([]models.Guest, 0)
	for _, guest := range guests {
		if guest.VisitDate == today {
			filtered = append(filtered, guest)
		}
	}
	return filtered, nil
}

// CheckedInGuests lists the guests currently in the office
func (s *StatsService) CheckedInGuests() ([]models.Guest, error) {
	guests, err := s.guests.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	filtered := make([]models.Guest, 0)
	for _, guest := range guests {
		if guest.Status == models.StatusCheckedIn || guest.Status == models.StatusWithHost {
			filtered = append(filtered, guest)
		}
	}
	return filtered, nil
}

// startOfWeek returns midnight on the Monday of the given time's week
func startOfWeek(t time.Time) time.Time {
	day := t.Truncate(24 * time.Hour)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
