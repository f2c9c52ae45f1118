package selectors

import (
	"fmt"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/models"
)

// Logical element keys.
const (
	HomeFeed           = "home_feed"
	ProfileHeader      = "profile_header"
	FollowButton       = "follow_button"
	FollowingIndicator = "following_indicator"
	Post               = "post"
	LikeButton         = "like_button"
	UnlikeButton       = "unlike_button"
	CommentBox         = "comment_box"
	PostCommentButton  = "post_comment_button"
	CommentText        = "comment_text"
)

// Spec is the ordered list of lookup strategies for one key.
type Spec struct {
	Primary   browser.Selector
	Fallbacks []browser.Selector
}

// Strategies returns the primary followed by the fallbacks.
func (s Spec) Strategies() []browser.Selector {
	out := make([]browser.Selector, 0, len(s.Fallbacks)+1)
	out = append(out, s.Primary)
	return append(out, s.Fallbacks...)
}

// DefaultSpecs returns the built-in selector table. The site changes its
// markup often, so most keys carry several fallbacks.
func DefaultSpecs() map[string]Spec {
	return map[string]Spec{
		HomeFeed: {
			Primary: browser.CSS("main[role='main']"),
			Fallbacks: []browser.Selector{
				browser.CSS("main"),
				browser.XPath("//main"),
			},
		},
		ProfileHeader: {
			Primary: browser.CSS("header section"),
			Fallbacks: []browser.Selector{
				browser.CSS("main header"),
				browser.XPath("//header"),
			},
		},
		FollowButton: {
			Primary: browser.Text("header button", "^Follow$"),
			Fallbacks: []browser.Selector{
				browser.XPath("//header//button[normalize-space()='Follow']"),
				browser.XPath("//button[.//div[text()='Follow']]"),
				browser.Text("header div[role='button']", "^Follow$"),
			},
		},
		FollowingIndicator: {
			Primary: browser.Text("header button", "^(Following|Requested)$"),
			Fallbacks: []browser.Selector{
				browser.XPath("//header//button[.//*[text()='Following']]"),
				browser.CSS("header button[aria-label='Following']"),
			},
		},
		Post: {
			Primary: browser.CSS("article"),
			Fallbacks: []browser.Selector{
				browser.CSS("div[role='presentation'] article"),
				browser.XPath("//article"),
			},
		},
		LikeButton: {
			Primary: browser.CSS("section span svg[aria-label='Like']"),
			Fallbacks: []browser.Selector{
				browser.CSS("svg[aria-label='Like']"),
				browser.XPath(".//*[name()='svg' and @aria-label='Like']/ancestor::*[@role='button'][1]"),
				browser.CSS("button[aria-label='Like']"),
			},
		},
		UnlikeButton: {
			Primary: browser.CSS("section span svg[aria-label='Unlike']"),
			Fallbacks: []browser.Selector{
				browser.CSS("svg[aria-label='Unlike']"),
				browser.CSS("button[aria-label='Unlike']"),
			},
		},
		CommentBox: {
			Primary: browser.CSS("textarea[aria-label='Add a comment…']"),
			Fallbacks: []browser.Selector{
				browser.CSS("form textarea"),
				browser.XPath(".//textarea"),
			},
		},
		PostCommentButton: {
			Primary: browser.Text("form div[role='button']", "^Post$"),
			Fallbacks: []browser.Selector{
				browser.Text("form button", "^Post$"),
				browser.XPath(".//form//*[text()='Post']"),
			},
		},
		CommentText: {
			Primary: browser.CSS("ul li span[dir='auto']"),
			Fallbacks: []browser.Selector{
				browser.CSS("ul span"),
			},
		},
	}
}

// FromDocument merges the document's selector overrides into the default
// table.
func FromDocument(doc *config.Document) (map[string]Spec, error) {
	specs := DefaultSpecs()
	for key, override := range doc.Selectors {
		primary, err := convert(override.Primary)
		if err != nil {
			return nil, fmt.Errorf("%w: selector %s: %v", models.ErrConfiguration, key, err)
		}
		spec := Spec{Primary: primary}
		for i, fb := range override.Fallbacks {
			sel, err := convert(fb)
			if err != nil {
				return nil, fmt.Errorf("%w: selector %s fallback %d: %v", models.ErrConfiguration, key, i, err)
			}
			spec.Fallbacks = append(spec.Fallbacks, sel)
		}
		specs[key] = spec
	}
	return specs, nil
}

func convert(s config.StrategySpec) (browser.Selector, error) {
	if s.Expr == "" {
		return browser.Selector{}, fmt.Errorf("empty expression")
	}
	switch browser.SelectorKind(s.Kind) {
	case browser.KindCSS, "":
		return browser.CSS(s.Expr), nil
	case browser.KindXPath:
		return browser.XPath(s.Expr), nil
	case browser.KindText:
		if s.Match == "" {
			return browser.Selector{}, fmt.Errorf("text strategy needs a match pattern")
		}
		return browser.Text(s.Expr, s.Match), nil
	default:
		return browser.Selector{}, fmt.Errorf("unknown strategy kind %q", s.Kind)
	}
}
