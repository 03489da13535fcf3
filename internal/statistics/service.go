package statistics

import (
	"context"
	"time"
)

// History window bounds in days.
const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 366
)

// Service exposes snapshot capture and history.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Capture stores today's snapshot for a project, where today is evaluated in
// timezone. Unknown timezones fall back to UTC.
func (s *Service) Capture(ctx context.Context, projectID int64, timezone string, now time.Time) (Snapshot, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.Capture(ctx, projectID, day)
}

// History lists up to days snapshots of a project, newest first. Zero means
// DefaultHistoryDays; anything outside 1..MaxHistoryDays is rejected.
func (s *Service) History(ctx context.Context, projectID int64, days int) ([]Snapshot, error) {
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 1 || days > MaxHistoryDays {
		return nil, ErrInvalidDays
	}
	return s.repo.FindByProjectID(ctx, projectID, days)
}
