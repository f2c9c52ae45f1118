// Package browsertest provides a scriptable in-memory browser.Page for tests.
package browsertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/nikshitha/social-warmup/browser"
)

// Clock is a manual clock advanced by Page.Sleep.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current synthetic time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Element is a fake DOM node.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children map[string][]*Element
	// OnClick runs when the element is clicked.
	OnClick func(p *Page, el *Element) error
}

// NewElement creates an element with optional attribute pairs.
func NewElement(name string, attrs ...string) *Element {
	el := &Element{Name: name, Attrs: map[string]string{}, Children: map[string][]*Element{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		el.Attrs[attrs[i]] = attrs[i+1]
	}
	return el
}

func (e *Element) String() string {
	return "<" + e.Name + ">"
}

// Add registers children of e under sel.
func (e *Element) Add(sel browser.Selector, children ...*Element) *Element {
	e.Children[sel.String()] = append(e.Children[sel.String()], children...)
	return e
}

// Page is an in-memory browser.Page. Navigate runs the builder registered
// for the URL against a fresh DOM.
type Page struct {
	Clock *Clock

	Sites       map[string]func(p *Page)
	NavigateErr map[string]error
	QueryErr    map[string]error

	URL string
	DOM map[string][]*Element

	Navigations []string
	Clicks      []*Element
	Typed       []rune
	KeyDelays   []time.Duration
	Fills       []string
	Scrolls     []float64
	Slept       []time.Duration
}

// NewPage returns an empty page bound to clock (may be nil).
func NewPage(clock *Clock) *Page {
	return &Page{
		Clock:       clock,
		Sites:       map[string]func(p *Page){},
		NavigateErr: map[string]error{},
		QueryErr:    map[string]error{},
		DOM:         map[string][]*Element{},
	}
}

// Site registers the DOM builder for url.
func (p *Page) Site(url string, build func(p *Page)) {
	p.Sites[url] = build
}

// Add registers top-level elements under sel.
func (p *Page) Add(sel browser.Selector, els ...*Element) {
	p.DOM[sel.String()] = append(p.DOM[sel.String()], els...)
}

// Remove drops el from the elements registered under sel.
func (p *Page) Remove(sel browser.Selector, el *Element) {
	key := sel.String()
	kept := p.DOM[key][:0]
	for _, e := range p.DOM[key] {
		if e != el {
			kept = append(kept, e)
		}
	}
	p.DOM[key] = kept
}

// Navigate implements browser.Page.
func (p *Page) Navigate(url string, _ browser.WaitPolicy) error {
	p.Navigations = append(p.Navigations, url)
	if err := p.NavigateErr[url]; err != nil {
		return err
	}
	p.URL = url
	p.DOM = map[string][]*Element{}
	if build, ok := p.Sites[url]; ok {
		build(p)
	}
	return nil
}

func (p *Page) lookup(sel browser.Selector, scope browser.Element) ([]*Element, error) {
	key := sel.String()
	if err := p.QueryErr[key]; err != nil {
		return nil, err
	}
	if scope == nil {
		return p.DOM[key], nil
	}
	el, ok := scope.(*Element)
	if !ok {
		return nil, fmt.Errorf("foreign element %T", scope)
	}
	return el.Children[key], nil
}

// QueryOne implements browser.Page.
func (p *Page) QueryOne(sel browser.Selector, scope browser.Element) (browser.Element, error) {
	els, err := p.lookup(sel, scope)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

// QueryAll implements browser.Page.
func (p *Page) QueryAll(sel browser.Selector, scope browser.Element) ([]browser.Element, error) {
	els, err := p.lookup(sel, scope)
	if err != nil {
		return nil, err
	}
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func asElement(el browser.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return nil, fmt.Errorf("foreign element %T", el)
	}
	return e, nil
}

// Click implements browser.Page.
func (p *Page) Click(el browser.Element) error {
	e, err := asElement(el)
	if err != nil {
		return err
	}
	p.Clicks = append(p.Clicks, e)
	if e.OnClick != nil {
		return e.OnClick(p, e)
	}
	return nil
}

// TypeChar implements browser.Page. The element's value attribute tracks
// what has been typed.
func (p *Page) TypeChar(el browser.Element, ch rune, interKeyDelay time.Duration) error {
	e, err := asElement(el)
	if err != nil {
		return err
	}
	p.Typed = append(p.Typed, ch)
	p.KeyDelays = append(p.KeyDelays, interKeyDelay)
	v := []rune(e.Attrs["value"])
	if ch == browser.KeyBackspace {
		if len(v) > 0 {
			v = v[:len(v)-1]
		}
	} else {
		v = append(v, ch)
	}
	e.Attrs["value"] = string(v)
	if p.Clock != nil {
		p.Clock.Advance(interKeyDelay)
	}
	return nil
}

// Fill implements browser.Page.
func (p *Page) Fill(el browser.Element, text string) error {
	e, err := asElement(el)
	if err != nil {
		return err
	}
	p.Fills = append(p.Fills, text)
	e.Attrs["value"] = text
	return nil
}

// Attribute implements browser.Page.
func (p *Page) Attribute(el browser.Element, name string) (string, error) {
	e, err := asElement(el)
	if err != nil {
		return "", err
	}
	return e.Attrs[name], nil
}

// CurrentURL implements browser.Page.
func (p *Page) CurrentURL() (string, error) {
	return p.URL, nil
}

// ScrollBy implements browser.Page.
func (p *Page) ScrollBy(deltaY float64) error {
	p.Scrolls = append(p.Scrolls, deltaY)
	return nil
}

// Sleep implements browser.Page and advances the clock.
func (p *Page) Sleep(d time.Duration) {
	p.Slept = append(p.Slept, d)
	if p.Clock != nil {
		p.Clock.Advance(d)
	}
}

// Backspaces counts backspace key presses.
func (p *Page) Backspaces() int {
	n := 0
	for _, r := range p.Typed {
		if r == browser.KeyBackspace {
			n++
		}
	}
	return n
}

var _ browser.Page = (*Page)(nil)
