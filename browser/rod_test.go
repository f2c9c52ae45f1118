package browser

import (
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedHTML = `<html><body>
<div class="post"><span class="caption">first</span>
  <button class="like" onclick="this.setAttribute('data-state','liked')">Like</button></div>
<div class="post"><span class="caption">second</span>
  <button class="like">Like</button></div>
<textarea id="comment"></textarea>
</body></html>`

func newRodPage(t *testing.T) *RodPage {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium binary available")
	}

	u, err := launcher.New().Bin(bin).Headless(true).Set("no-sandbox").Launch()
	require.NoError(t, err)
	b := rod.New().ControlURL(u)
	require.NoError(t, b.Connect())
	t.Cleanup(func() { _ = b.Close() })

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	require.NoError(t, err)
	require.NoError(t, page.SetDocumentContent(feedHTML))
	return NewRodPage(page, 2*time.Second, logger.NewNop())
}

func TestRodPageElementsOutliveLookup(t *testing.T) {
	p := newRodPage(t)

	posts, err := p.QueryAll(CSS("div.post"), nil)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Scoped lookup inside an element returned by an earlier query.
	btn, err := p.QueryOne(CSS("button.like"), posts[0])
	require.NoError(t, err)
	require.NotNil(t, btn)

	require.NoError(t, p.Click(btn))
	state, err := p.Attribute(btn, "data-state")
	require.NoError(t, err)
	assert.Equal(t, "liked", state)

	caption, err := p.QueryOne(Text("span.caption", "^second$"), nil)
	require.NoError(t, err)
	require.NotNil(t, caption)
	text, err := p.Attribute(caption, "textContent")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestRodPageTypeIntoResolvedElement(t *testing.T) {
	p := newRodPage(t)

	box, err := p.QueryOne(CSS("#comment"), nil)
	require.NoError(t, err)
	require.NotNil(t, box)

	for _, ch := range "hi" {
		require.NoError(t, p.TypeChar(box, ch, 0))
	}
	value, err := p.Attribute(box, "value")
	require.NoError(t, err)
	assert.Equal(t, "hi", value)
}

func TestRodPageMissingElement(t *testing.T) {
	p := newRodPage(t)

	el, err := p.QueryOne(CSS("#absent"), nil)
	assert.NoError(t, err)
	assert.Nil(t, el)
}
