package stealth

import (
	"time"

	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
)

// Scheduler decides whether a session may start at a given time.
type Scheduler struct {
	config   *config.ScheduleConfig
	location *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewScheduler creates a new activity scheduler
func NewScheduler(cfg *config.ScheduleConfig, loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		config:   cfg,
		location: loc,
		logger:   log.WithModule("scheduler"),
		now:      time.Now,
	}
}

// IsWithinOperatingHours checks if t is within allowed hours
func (s *Scheduler) IsWithinOperatingHours(t time.Time) bool {
	if !s.config.Enabled {
		return true
	}

	t = t.In(s.location)

	if s.config.WorkDaysOnly {
		weekday := t.Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			return false
		}
	}

	hour := t.Hour()
	return hour >= s.config.StartHour && hour < s.config.EndHour
}

// NextWindow returns the earliest time at or after t that is within
// operating hours.
func (s *Scheduler) NextWindow(t time.Time) time.Time {
	if s.IsWithinOperatingHours(t) {
		return t
	}
	t = t.In(s.location)
	candidate := time.Date(t.Year(), t.Month(), t.Day(), s.config.StartHour, 0, 0, 0, s.location)
	if !candidate.After(t) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	for i := 0; i < 7 && !s.IsWithinOperatingHours(candidate); i++ {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// WaitForOperatingHours blocks on sleeper until operating hours begin
func (s *Scheduler) WaitForOperatingHours(sleeper Sleeper) {
	now := s.now()
	next := s.NextWindow(now)
	if !next.After(now) {
		return
	}
	s.logger.Infof("Outside operating hours (%d:00 - %d:00), waiting until %s",
		s.config.StartHour, s.config.EndHour, next.Format(time.RFC3339))
	sleeper.Sleep(next.Sub(now))
}
