// Package stealth implements the human timing model used between browser
// actions: randomized named delays and character-level typing cadence.
package stealth

import (
	"math/rand"
	"time"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
)

// DefaultDelay applies to delay categories missing from the document.
var DefaultDelay = config.Range{Min: 2, Max: 5}

// Sleeper suspends the calling sequence.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Typist is the part of the browser surface used for typing.
type Typist interface {
	Fill(el browser.Element, text string) error
	TypeChar(el browser.Element, ch rune, interKeyDelay time.Duration) error
}

// Timing produces randomized delays and typing cadences. It is not safe for
// concurrent use; one Timing belongs to one session.
type Timing struct {
	delays   map[string]config.Range
	behavior config.Behavior
	rand     *rand.Rand
	sleeper  Sleeper
	logger   *logger.Logger
}

// NewTiming creates a timing model from the document's delays and behavior.
// rng must be non-nil; seed it to make a run reproducible.
func NewTiming(doc *config.Document, sleeper Sleeper, rng *rand.Rand, log *logger.Logger) *Timing {
	if log == nil {
		log = logger.NewNop()
	}
	return &Timing{
		delays:   doc.Delays,
		behavior: doc.Behavior,
		rand:     rng,
		sleeper:  sleeper,
		logger:   log.WithModule("timing"),
	}
}

// Delay sleeps for a duration drawn uniformly from the named category and
// returns it. Unknown categories use DefaultDelay.
func (t *Timing) Delay(category string) time.Duration {
	r, ok := t.delays[category]
	if !ok {
		r = DefaultDelay
	}
	min, max := r.Duration()
	d := t.uniform(min, max)
	t.sleeper.Sleep(d)

	t.logger.WithFields(map[string]interface{}{
		"delay_category": category,
		"duration_ms":    d.Milliseconds(),
	}).Debug("Delay")
	return d
}

// Pause sleeps for a duration drawn uniformly from [min, max].
func (t *Timing) Pause(min, max time.Duration) time.Duration {
	d := t.uniform(min, max)
	t.sleeper.Sleep(d)
	return d
}

// Chance reports true with probability p.
func (t *Timing) Chance(p float64) bool {
	return t.rand.Float64() < p
}

// Between returns a uniformly drawn integer in [min, max].
func (t *Timing) Between(min, max int) int {
	if max <= min {
		return min
	}
	return min + t.rand.Intn(max-min+1)
}

func (t *Timing) uniform(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(t.rand.Int63n(int64(max-min)+1))
}

// charDelay draws the per-character typing delay.
func (t *Timing) charDelay() time.Duration {
	speed := t.behavior.TypingSpeed
	if speed.Max == 0 {
		speed = config.IntRange{Min: 50, Max: 150}
	}
	return time.Duration(t.Between(speed.Min, speed.Max)) * time.Millisecond
}

// TypeText clears el and types text one character at a time. Occasionally a
// wrong lowercase letter is typed and erased first, and occasionally a
// longer thinking pause follows a character.
func (t *Timing) TypeText(page Typist, el browser.Element, text string) error {
	if err := page.Fill(el, ""); err != nil {
		return err
	}
	t.Pause(500*time.Millisecond, 1500*time.Millisecond)

	typoProb := t.behavior.ErrorCorrectionProbability
	thinkProb := t.behavior.ThinkingPauseProbability

	runes := []rune(text)
	corrections := 0
	for i, ch := range runes {
		if i < len(runes)-1 && t.Chance(typoProb) {
			wrong := rune('a' + t.rand.Intn(26))
			if err := page.TypeChar(el, wrong, t.charDelay()); err != nil {
				return err
			}
			t.Pause(100*time.Millisecond, 300*time.Millisecond)
			if err := page.TypeChar(el, browser.KeyBackspace, 0); err != nil {
				return err
			}
			t.Pause(200*time.Millisecond, 500*time.Millisecond)
			corrections++
		}

		if err := page.TypeChar(el, ch, t.charDelay()); err != nil {
			return err
		}

		if t.Chance(thinkProb) {
			t.Pause(300*time.Millisecond, 1200*time.Millisecond)
		}
	}

	t.logger.WithFields(map[string]interface{}{
		"length":      len(runes),
		"corrections": corrections,
	}).Debug("Typed text")
	return nil
}
