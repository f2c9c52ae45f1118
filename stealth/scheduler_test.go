package stealth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nikshitha/social-warmup/browser/browsertest"
	"github.com/nikshitha/social-warmup/config"
)

func newTestScheduler(cfg config.ScheduleConfig) *Scheduler {
	return NewScheduler(&cfg, time.UTC, nil)
}

func TestSchedulerDisabled(t *testing.T) {
	s := newTestScheduler(config.ScheduleConfig{Enabled: false, StartHour: 9, EndHour: 17})

	midnight := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.True(t, s.IsWithinOperatingHours(midnight))
}

func TestSchedulerOperatingHours(t *testing.T) {
	s := newTestScheduler(config.ScheduleConfig{Enabled: true, StartHour: 9, EndHour: 17})

	// Wednesday
	assert.False(t, s.IsWithinOperatingHours(time.Date(2026, 3, 4, 8, 59, 0, 0, time.UTC)))
	assert.True(t, s.IsWithinOperatingHours(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)))
	assert.True(t, s.IsWithinOperatingHours(time.Date(2026, 3, 4, 16, 59, 0, 0, time.UTC)))
	assert.False(t, s.IsWithinOperatingHours(time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)))
}

func TestSchedulerWorkDaysOnly(t *testing.T) {
	s := newTestScheduler(config.ScheduleConfig{Enabled: true, StartHour: 9, EndHour: 17, WorkDaysOnly: true})

	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	assert.False(t, s.IsWithinOperatingHours(saturday))

	next := s.NextWindow(saturday)
	assert.Equal(t, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), next)
}

func TestSchedulerNextWindow(t *testing.T) {
	s := newTestScheduler(config.ScheduleConfig{Enabled: true, StartHour: 9, EndHour: 17})

	early := time.Date(2026, 3, 4, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), s.NextWindow(early))

	late := time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), s.NextWindow(late))

	inside := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, inside, s.NextWindow(inside))
}

func TestSchedulerWait(t *testing.T) {
	s := newTestScheduler(config.ScheduleConfig{Enabled: true, StartHour: 9, EndHour: 17})
	clock := browsertest.NewClock(time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC))
	s.now = clock.Now
	page := browsertest.NewPage(clock)

	s.WaitForOperatingHours(page)

	assert.Equal(t, []time.Duration{2 * time.Hour}, page.Slept)
	assert.True(t, s.IsWithinOperatingHours(clock.Now()))

	s.WaitForOperatingHours(page)
	assert.Len(t, page.Slept, 1)
}
