package browser

import (
	"fmt"
	"time"
)

// SelectorKind says how a selector expression is evaluated.
type SelectorKind string

const (
	KindCSS   SelectorKind = "css"
	KindXPath SelectorKind = "xpath"
	// KindText matches elements selected by the CSS Expr whose visible text
	// matches the Match regular expression.
	KindText SelectorKind = "text"
)

// Selector is one lookup strategy.
type Selector struct {
	Kind  SelectorKind
	Expr  string
	Match string
}

func (s Selector) String() string {
	if s.Kind == KindText {
		return fmt.Sprintf("%s:%s~/%s/", s.Kind, s.Expr, s.Match)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.Expr)
}

// CSS is a shorthand for a CSS selector.
func CSS(expr string) Selector { return Selector{Kind: KindCSS, Expr: expr} }

// XPath is a shorthand for an XPath selector.
func XPath(expr string) Selector { return Selector{Kind: KindXPath, Expr: expr} }

// Text is a shorthand for a text-matching selector.
func Text(expr, match string) Selector { return Selector{Kind: KindText, Expr: expr, Match: match} }

// WaitPolicy controls when Navigate returns.
type WaitPolicy string

const (
	WaitLoad             WaitPolicy = "load"
	WaitDOMContentLoaded WaitPolicy = "domcontentloaded"
	WaitNetworkIdle      WaitPolicy = "networkidle"
)

// KeyBackspace is passed to TypeChar to delete the previous character.
const KeyBackspace rune = '\b'

// Element is an opaque handle to a live DOM element.
type Element interface {
	String() string
}

// Page is the browser surface the warm-up core drives. Query methods return
// (nil, nil) or an empty slice when nothing matches; errors mean the lookup
// itself failed.
type Page interface {
	Navigate(url string, wait WaitPolicy) error
	QueryOne(sel Selector, scope Element) (Element, error)
	QueryAll(sel Selector, scope Element) ([]Element, error)
	Click(el Element) error
	TypeChar(el Element, ch rune, interKeyDelay time.Duration) error
	Fill(el Element, text string) error
	Attribute(el Element, name string) (string, error)
	CurrentURL() (string, error)
	ScrollBy(deltaY float64) error
	Sleep(d time.Duration)
}
