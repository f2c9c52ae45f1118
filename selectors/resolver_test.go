package selectors

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/browser/browsertest"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
)

var (
	primary   = browser.CSS("#primary")
	fallback1 = browser.XPath("//fallback-one")
	fallback2 = browser.Text("button", "^Go$")
)

func newTestResolver() (*Resolver, *browsertest.Page) {
	page := browsertest.NewPage(nil)
	specs := map[string]Spec{
		"target": {Primary: primary, Fallbacks: []browser.Selector{fallback1, fallback2}},
	}
	return NewResolver(page, specs, nil), page
}

func TestFindOnePrimaryTakesPrecedence(t *testing.T) {
	r, page := newTestResolver()
	want := browsertest.NewElement("primary")
	page.Add(primary, want)
	page.Add(fallback1, browsertest.NewElement("fb1"))
	page.Add(fallback2, browsertest.NewElement("fb2"))

	el, err := r.FindOne("target", nil)

	require.NoError(t, err)
	assert.Same(t, want, el)
}

func TestFindOneFallbackOrder(t *testing.T) {
	r, page := newTestResolver()
	fb1 := browsertest.NewElement("fb1")
	fb2 := browsertest.NewElement("fb2")
	page.Add(fallback1, fb1)
	page.Add(fallback2, fb2)

	el, err := r.FindOne("target", nil)
	require.NoError(t, err)
	assert.Same(t, fb1, el)

	page.Remove(fallback1, fb1)
	el, err = r.FindOne("target", nil)
	require.NoError(t, err)
	assert.Same(t, fb2, el)
}

func TestFindOneSkipsFailingStrategy(t *testing.T) {
	r, page := newTestResolver()
	page.QueryErr[primary.String()] = errors.New("invalid selector")
	fb1 := browsertest.NewElement("fb1")
	page.Add(fallback1, fb1)

	el, err := r.FindOne("target", nil)

	require.NoError(t, err)
	assert.Same(t, fb1, el)
}

func TestFindOneNothingMatches(t *testing.T) {
	r, page := newTestResolver()
	page.QueryErr[fallback2.String()] = errors.New("detached")

	el, err := r.FindOne("target", nil)

	assert.NoError(t, err)
	assert.Nil(t, el)
	assert.False(t, r.Exists("target", nil))
}

func TestUnknownKeyIsConfigurationError(t *testing.T) {
	r, _ := newTestResolver()

	_, err := r.FindOne("no_such_key", nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = r.FindAll("no_such_key", nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestExistsUnknownKeyLogsError(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "info"})
	require.NoError(t, err)
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log.Logger)

	r := NewResolver(browsertest.NewPage(nil), DefaultSpecs(), log)

	assert.False(t, r.Exists("no_such_key", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "no_such_key", entry.Data["key"])
	assert.Contains(t, entry.Data["error"], "unknown selector key")
}

func TestFindOneWithinScope(t *testing.T) {
	r, page := newTestResolver()
	inner := browsertest.NewElement("inner")
	post := browsertest.NewElement("post").Add(fallback1, inner)
	page.Add(primary, browsertest.NewElement("page-level"))

	el, err := r.FindOne("target", post)

	require.NoError(t, err)
	assert.Same(t, inner, el)
}

func TestFindAllReturnsFirstNonEmptyStrategy(t *testing.T) {
	r, page := newTestResolver()
	a := browsertest.NewElement("a")
	b := browsertest.NewElement("b")
	page.Add(fallback1, a, b)
	page.Add(fallback2, browsertest.NewElement("c"))

	els, err := r.FindAll("target", nil)

	require.NoError(t, err)
	require.Len(t, els, 2)
	assert.Same(t, a, els[0])
	assert.Same(t, b, els[1])
}

func TestFindAllPrimaryPrecedence(t *testing.T) {
	r, page := newTestResolver()
	page.Add(primary, browsertest.NewElement("p"))
	page.Add(fallback1, browsertest.NewElement("a"), browsertest.NewElement("b"))

	els, err := r.FindAll("target", nil)

	require.NoError(t, err)
	assert.Len(t, els, 1)
}

func TestFindAllEmpty(t *testing.T) {
	r, _ := newTestResolver()

	els, err := r.FindAll("target", nil)

	assert.NoError(t, err)
	assert.Empty(t, els)
}

func TestDefaultSpecsCoverKeys(t *testing.T) {
	specs := DefaultSpecs()
	for _, key := range []string{
		HomeFeed, ProfileHeader, FollowButton, FollowingIndicator, Post,
		LikeButton, UnlikeButton, CommentBox, PostCommentButton, CommentText,
	} {
		spec, ok := specs[key]
		require.True(t, ok, key)
		assert.NotEmpty(t, spec.Primary.Expr, key)
	}
}

func TestFromDocumentOverrides(t *testing.T) {
	doc := config.DefaultDocument()
	doc.Selectors = map[string]config.SelectorSpec{
		FollowButton: {
			Primary:   config.StrategySpec{Kind: "css", Expr: "button.follow"},
			Fallbacks: []config.StrategySpec{{Kind: "text", Expr: "button", Match: "Follow"}},
		},
	}

	specs, err := FromDocument(doc)

	require.NoError(t, err)
	assert.Equal(t, browser.CSS("button.follow"), specs[FollowButton].Primary)
	assert.Equal(t, []browser.Selector{browser.Text("button", "Follow")}, specs[FollowButton].Fallbacks)
	assert.Equal(t, DefaultSpecs()[LikeButton], specs[LikeButton])
}

func TestFromDocumentRejectsBadStrategy(t *testing.T) {
	doc := config.DefaultDocument()
	doc.Selectors = map[string]config.SelectorSpec{
		Post: {Primary: config.StrategySpec{Kind: "regex", Expr: "article"}},
	}

	_, err := FromDocument(doc)

	assert.ErrorIs(t, err, models.ErrConfiguration)
}
