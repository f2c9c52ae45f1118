package browser

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/nikshitha/social-warmup/logger"
)

// rodElement adapts *rod.Element to Element.
type rodElement struct {
	el *rod.Element
}

func (e rodElement) String() string {
	return e.el.String()
}

// RodPage implements Page on top of a go-rod page.
type RodPage struct {
	page         *rod.Page
	logger       *logger.Logger
	queryTimeout time.Duration
}

// NewRodPage wraps page. queryTimeout bounds how long a single lookup waits
// for a match before reporting absence.
func NewRodPage(page *rod.Page, queryTimeout time.Duration, log *logger.Logger) *RodPage {
	return &RodPage{
		page:         page,
		logger:       log.WithModule("page"),
		queryTimeout: queryTimeout,
	}
}

// Navigate loads url and waits according to wait.
func (p *RodPage) Navigate(url string, wait WaitPolicy) error {
	p.logger.BrowserAction("navigate", url)

	var waitNav func()
	if wait == WaitNetworkIdle {
		waitNav = p.page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	}

	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	switch wait {
	case WaitNetworkIdle:
		waitNav()
	case WaitDOMContentLoaded:
		if err := p.page.WaitElementsMoreThan("body", 0); err != nil {
			return fmt.Errorf("page load failed: %w", err)
		}
	default:
		if err := p.page.WaitLoad(); err != nil {
			return fmt.Errorf("page load failed: %w", err)
		}
	}
	return nil
}

// QueryOne returns the first element matching sel inside scope (or the page).
func (p *RodPage) QueryOne(sel Selector, scope Element) (Element, error) {
	els, err := p.query(sel, scope, true)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

// QueryAll returns every element matching sel inside scope (or the page).
func (p *RodPage) QueryAll(sel Selector, scope Element) ([]Element, error) {
	return p.query(sel, scope, false)
}

func (p *RodPage) query(sel Selector, scope Element, first bool) ([]Element, error) {
	page := p.page.Timeout(p.queryTimeout)
	defer page.CancelTimeout()

	var root *rod.Element
	if scope != nil {
		re, ok := scope.(rodElement)
		if !ok {
			return nil, fmt.Errorf("foreign element handle %T", scope)
		}
		root = re.el.Timeout(p.queryTimeout)
		defer root.CancelTimeout()
	}

	var (
		found rod.Elements
		err   error
	)
	switch sel.Kind {
	case KindCSS, "":
		if root != nil {
			found, err = root.Elements(sel.Expr)
		} else {
			found, err = page.Elements(sel.Expr)
		}
	case KindXPath:
		if root != nil {
			found, err = root.ElementsX(sel.Expr)
		} else {
			found, err = page.ElementsX(sel.Expr)
		}
	case KindText:
		found, err = p.queryText(page, root, sel)
	default:
		return nil, fmt.Errorf("unsupported selector kind %q", sel.Kind)
	}
	if err != nil {
		return nil, err
	}

	// Found elements inherit the lookup's timeout context, which is
	// cancelled on return; rebind them to the page context.
	ctx := p.page.GetContext()
	out := make([]Element, 0, len(found))
	for _, el := range found {
		out = append(out, rodElement{el: el.Context(ctx)})
		if first {
			break
		}
	}
	return out, nil
}

func (p *RodPage) queryText(page *rod.Page, root *rod.Element, sel Selector) (rod.Elements, error) {
	re, err := regexp.Compile(sel.Match)
	if err != nil {
		return nil, fmt.Errorf("invalid text pattern %q: %w", sel.Match, err)
	}

	var candidates rod.Elements
	if root != nil {
		candidates, err = root.Elements(sel.Expr)
	} else {
		candidates, err = page.Elements(sel.Expr)
	}
	if err != nil {
		return nil, err
	}

	var matched rod.Elements
	for _, el := range candidates {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			matched = append(matched, el)
		}
	}
	return matched, nil
}

func unwrap(el Element) (*rod.Element, error) {
	re, ok := el.(rodElement)
	if !ok || re.el == nil {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	return re.el, nil
}

// Click scrolls el into view and clicks it.
func (p *RodPage) Click(el Element) error {
	re, err := unwrap(el)
	if err != nil {
		return err
	}
	if err := re.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view failed: %w", err)
	}
	return re.Click(proto.InputMouseButtonLeft, 1)
}

// TypeChar types one character into el, then waits interKeyDelay.
func (p *RodPage) TypeChar(el Element, ch rune, interKeyDelay time.Duration) error {
	re, err := unwrap(el)
	if err != nil {
		return err
	}
	if ch == KeyBackspace {
		err = p.page.Keyboard.Type(input.Backspace)
	} else {
		err = re.Input(string(ch))
	}
	if err != nil {
		return err
	}
	if interKeyDelay > 0 {
		time.Sleep(interKeyDelay)
	}
	return nil
}

// Fill replaces the content of el with text.
func (p *RodPage) Fill(el Element, text string) error {
	re, err := unwrap(el)
	if err != nil {
		return err
	}
	if err := re.SelectAllText(); err != nil {
		return err
	}
	if text == "" {
		return p.page.Keyboard.Type(input.Backspace)
	}
	return re.Input(text)
}

// Attribute returns an attribute of el. textContent and value are read from
// the element's properties.
func (p *RodPage) Attribute(el Element, name string) (string, error) {
	re, err := unwrap(el)
	if err != nil {
		return "", err
	}
	switch name {
	case "textContent", "innerText":
		return re.Text()
	case "value":
		v, err := re.Property("value")
		if err != nil {
			return "", err
		}
		return v.Str(), nil
	}
	v, err := re.Attribute(name)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

// CurrentURL returns the URL of the page.
func (p *RodPage) CurrentURL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// ScrollBy scrolls the page vertically by deltaY pixels.
func (p *RodPage) ScrollBy(deltaY float64) error {
	return p.page.Mouse.Scroll(0, deltaY, 4)
}

// Sleep pauses the calling sequence.
func (p *RodPage) Sleep(d time.Duration) {
	time.Sleep(d)
}
