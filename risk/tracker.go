// Package risk tracks executed actions and decides whether further actions
// stay within the session and hourly budgets.
package risk

import (
	"time"

	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
)

// Window is the trailing interval used for hourly limits.
const Window = time.Hour

// Entry is one record of the action log.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Category  models.Category `json:"category"`
	Outcome   models.Status   `json:"outcome"`
	Message   string          `json:"message,omitempty"`
}

// Sink receives a copy of every appended entry.
type Sink interface {
	SaveAction(entry Entry) error
}

// Tracker owns the action log of one session. It is not safe for concurrent
// use.
type Tracker struct {
	limits           config.Limits
	now              func() time.Time
	entries          []Entry
	actionsPerformed int
	sink             Sink
	logger           *logger.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithSink mirrors appended entries to s.
func WithSink(s Sink) Option {
	return func(t *Tracker) {
		t.sink = s
	}
}

// NewTracker creates a tracker for the given limits.
func NewTracker(limits config.Limits, log *logger.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = logger.NewNop()
	}
	t := &Tracker{
		limits: limits,
		now:    time.Now,
		logger: log.WithModule("risk"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckActionRisk reports whether an action of category c may run now. It
// never records anything.
func (t *Tracker) CheckActionRisk(c models.Category) bool {
	if t.limits.MaxActionsPerSession > 0 && t.actionsPerformed >= t.limits.MaxActionsPerSession {
		t.logger.SessionLimit(t.actionsPerformed, t.limits.MaxActionsPerSession)
		return false
	}

	limit, ok := t.limits.Categories[c]
	if !ok {
		return true
	}

	// max_per_hour 0 leaves the category without an hourly cap.
	if limit.MaxPerHour > 0 {
		current := t.ActionsThisHour(c)
		if current >= limit.MaxPerHour {
			t.logger.RateLimit(string(c), current, limit.MaxPerHour)
			return false
		}
	}

	if t.limits.EnforceCoolDown {
		if remaining := t.CoolDownRemaining(c); remaining > 0 {
			t.logger.CoolDown(string(c), remaining.Seconds())
			return false
		}
	}

	return true
}

// LogAction appends an executed action to the log.
func (t *Tracker) LogAction(c models.Category, outcome models.Outcome) {
	entry := Entry{
		Timestamp: t.now(),
		Category:  c,
		Outcome:   outcome.Status,
		Message:   outcome.Message,
	}
	if n := len(t.entries); n > 0 && entry.Timestamp.Before(t.entries[n-1].Timestamp) {
		entry.Timestamp = t.entries[n-1].Timestamp
	}
	t.entries = append(t.entries, entry)
	t.actionsPerformed++

	if t.sink != nil {
		if err := t.sink.SaveAction(entry); err != nil {
			t.logger.WithError(err).Warn("Failed to persist action log entry")
		}
	}
}

// Seed preloads entries recorded by an earlier run so hourly windows survive
// a restart. Seeded entries do not count toward the session budget.
func (t *Tracker) Seed(entries []Entry) {
	if len(t.entries) > 0 {
		t.logger.Warn("Ignoring seed for a tracker that already has entries")
		return
	}
	seeded := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if n := len(seeded); n > 0 && e.Timestamp.Before(seeded[n-1].Timestamp) {
			continue
		}
		seeded = append(seeded, e)
	}
	t.entries = seeded
	t.logger.WithField("entries", len(seeded)).Info("Seeded action log")
}

// ActionsThisHour counts entries of category c no older than Window.
func (t *Tracker) ActionsThisHour(c models.Category) int {
	now := t.now()
	count := 0
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if now.Sub(e.Timestamp) > Window {
			break
		}
		if e.Category == c {
			count++
		}
	}
	return count
}

// CoolDownRemaining returns how long category c must still wait after its
// most recent entry. Zero means no wait.
func (t *Tracker) CoolDownRemaining(c models.Category) time.Duration {
	limit, ok := t.limits.Categories[c]
	if !ok || limit.CoolDown() <= 0 {
		return 0
	}
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Category != c {
			continue
		}
		remaining := limit.CoolDown() - t.now().Sub(t.entries[i].Timestamp)
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	return 0
}

// ActionsPerformed returns the number of actions logged in this session.
func (t *Tracker) ActionsPerformed() int {
	return t.actionsPerformed
}

// Entries returns a copy of the action log.
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Counts returns entries per category within the trailing window.
func (t *Tracker) Counts() map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = t.ActionsThisHour(c)
	}
	return counts
}
