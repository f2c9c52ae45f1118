package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikshitha/social-warmup/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warmup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultDocumentIsValid(t *testing.T) {
	assert.NoError(t, DefaultDocument().Validate())
}

func TestLoadDocumentMalformedFallsBack(t *testing.T) {
	path := writeDoc(t, "limits: {max_actions_per_session: [oops\nphases: :::")
	doc := LoadDocument(path, nil)
	assert.Equal(t, DefaultDocument(), doc)
}

func TestLoadDocumentMissingFallsBack(t *testing.T) {
	doc := LoadDocument(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Equal(t, DefaultDocument(), doc)
}

func TestLoadDocumentInvalidRangeFallsBack(t *testing.T) {
	path := writeDoc(t, `
phases:
  1:
    1:
      feed_scrolls: {min: 5, max: 2}
`)
	doc := LoadDocument(path, nil)
	assert.Equal(t, DefaultDocument(), doc)
}

func TestParseDocumentFillsMissingSections(t *testing.T) {
	doc, err := ParseDocument([]byte(`
limits:
  max_actions_per_session: 10
phases:
  1:
    1:
      feed_scrolls: {min: 2, max: 2}
      profile_visits: {min: 3, max: 3}
      follows: {min: 0, max: 0}
      likes: {min: 2, max: 2}
      comments: {min: 0, max: 0}
targets:
  news: [daily, world]
`))
	require.NoError(t, err)

	assert.Equal(t, 10, doc.Limits.MaxActionsPerSession)
	assert.Equal(t, DefaultDocument().Delays, doc.Delays)
	assert.Equal(t, DefaultDocument().Behavior, doc.Behavior)
	assert.Equal(t, []string{"news"}, doc.TargetCategories())

	b, err := doc.DayBudget(1, 1)
	require.NoError(t, err)
	assert.Equal(t, IntRange{Min: 2, Max: 2}, b.Likes)
}

func TestParseDocumentMergesPartialSections(t *testing.T) {
	doc, err := ParseDocument([]byte("behavior:\n  read_post_probability: 0.5\nlimits:\n  categories:\n    follow: {max_per_hour: 5}\ndelays:\n  after_like: {min: 1, max: 1}\n"))
	require.NoError(t, err)

	def := DefaultDocument()
	assert.Equal(t, 0.5, doc.Behavior.ReadPostProbability)
	assert.Equal(t, def.Behavior.ErrorCorrectionProbability, doc.Behavior.ErrorCorrectionProbability)
	assert.Equal(t, def.Behavior.ThinkingPauseProbability, doc.Behavior.ThinkingPauseProbability)
	assert.Equal(t, def.Behavior.ReturnHomeProbability, doc.Behavior.ReturnHomeProbability)
	assert.Equal(t, def.Behavior.TypingSpeed, doc.Behavior.TypingSpeed)

	follow, ok := doc.CategoryLimit(models.CategoryFollow)
	require.True(t, ok)
	assert.Equal(t, 5, follow.MaxPerHour)
	for _, c := range []models.Category{models.CategoryLike, models.CategoryComment, models.CategoryScroll, models.CategoryNavigate} {
		l, ok := doc.CategoryLimit(c)
		require.True(t, ok, c)
		assert.Equal(t, def.Limits.Categories[c], l, c)
	}

	assert.Equal(t, Range{Min: 1, Max: 1}, doc.Delays["after_like"])
	assert.Len(t, doc.Delays, len(def.Delays))
	assert.Equal(t, def.Phases, doc.Phases)
}

func TestDayBudgetMissing(t *testing.T) {
	doc := DefaultDocument()

	_, err := doc.DayBudget(9, 1)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
	assert.Contains(t, err.Error(), "phase 9")

	_, err = doc.DayBudget(1, 42)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
	assert.Contains(t, err.Error(), "day 42")
}

func TestProfileURL(t *testing.T) {
	doc := DefaultDocument()
	doc.Site.BaseURL = "https://social.test"
	assert.Equal(t, "https://social.test/alice/", doc.ProfileURL("alice"))
	assert.Equal(t, "https://social.test/", doc.HomeURL())
}

func TestValidateProbabilities(t *testing.T) {
	doc := DefaultDocument()
	doc.Behavior.ReturnHomeProbability = 1.5
	err := doc.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}
