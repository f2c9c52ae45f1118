package stealth

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/browser/browsertest"
	"github.com/nikshitha/social-warmup/config"
)

func newTestTiming(t *testing.T, mutate func(doc *config.Document)) (*Timing, *browsertest.Page) {
	t.Helper()
	doc := config.DefaultDocument()
	if mutate != nil {
		mutate(doc)
	}
	page := browsertest.NewPage(browsertest.NewClock(time.Unix(0, 0)))
	return NewTiming(doc, page, rand.New(rand.NewSource(7)), nil), page
}

func TestDelayWithinRange(t *testing.T) {
	timing, page := newTestTiming(t, func(doc *config.Document) {
		doc.Delays["before_like"] = config.Range{Min: 1, Max: 2}
	})

	for i := 0; i < 50; i++ {
		d := timing.Delay("before_like")
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
	assert.Len(t, page.Slept, 50)
}

func TestDelayUnknownCategory(t *testing.T) {
	timing, _ := newTestTiming(t, nil)

	for i := 0; i < 50; i++ {
		d := timing.Delay("no_such_delay")
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestDelayDegenerateRange(t *testing.T) {
	timing, _ := newTestTiming(t, func(doc *config.Document) {
		doc.Delays["page_load"] = config.Range{Min: 3, Max: 3}
	})

	assert.Equal(t, 3*time.Second, timing.Delay("page_load"))
}

func TestDelayAdvancesClock(t *testing.T) {
	timing, page := newTestTiming(t, nil)
	start := page.Clock.Now()

	d := timing.Delay("page_load")
	assert.Equal(t, d, page.Clock.Now().Sub(start))
}

func TestBetween(t *testing.T) {
	timing, _ := newTestTiming(t, nil)

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		n := timing.Between(1, 3)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 3)
		seen[n] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 4, timing.Between(4, 4))
}

func TestChanceExtremes(t *testing.T) {
	timing, _ := newTestTiming(t, nil)

	for i := 0; i < 20; i++ {
		assert.False(t, timing.Chance(0))
		assert.True(t, timing.Chance(1))
	}
}

func TestTypeTextWithoutTypos(t *testing.T) {
	timing, page := newTestTiming(t, func(doc *config.Document) {
		doc.Behavior.ErrorCorrectionProbability = 0
	})
	el := browsertest.NewElement("textarea", "value", "old text")

	require.NoError(t, timing.TypeText(page, el, "Great post!"))

	assert.Equal(t, []string{""}, page.Fills)
	assert.Equal(t, "Great post!", string(page.Typed))
	assert.Equal(t, 0, page.Backspaces())
	assert.Equal(t, "Great post!", el.Attrs["value"])
	for _, d := range page.KeyDelays {
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestTypeTextAlwaysCorrects(t *testing.T) {
	timing, page := newTestTiming(t, func(doc *config.Document) {
		doc.Behavior.ErrorCorrectionProbability = 1
	})
	el := browsertest.NewElement("textarea")
	text := "hello"

	require.NoError(t, timing.TypeText(page, el, text))

	// The final character is never preceded by a typo.
	assert.Equal(t, len(text)-1, page.Backspaces())
	assert.Equal(t, text, el.Attrs["value"])
	assert.Len(t, page.Typed, 2*(len(text)-1)+len(text))
	assert.Equal(t, 'o', page.Typed[len(page.Typed)-1])
}

func TestTypeTextBackspaceHasNoDelay(t *testing.T) {
	timing, page := newTestTiming(t, func(doc *config.Document) {
		doc.Behavior.ErrorCorrectionProbability = 1
	})
	el := browsertest.NewElement("textarea")

	require.NoError(t, timing.TypeText(page, el, "ab"))

	for i, r := range page.Typed {
		if r == browser.KeyBackspace {
			assert.Zero(t, page.KeyDelays[i])
		}
	}
}

func TestTypeTextEmpty(t *testing.T) {
	timing, page := newTestTiming(t, nil)
	el := browsertest.NewElement("textarea", "value", "x")

	require.NoError(t, timing.TypeText(page, el, ""))

	assert.Empty(t, page.Typed)
	assert.Equal(t, "", el.Attrs["value"])
}
