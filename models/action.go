// Package models holds the value types shared by the warm-up packages:
// action categories, action kinds, outcomes and session results.
package models

import "fmt"

// Category is a budgeted action type. Each category has its own hourly cap
// and cool-down in the warm-up document.
type Category string

const (
	CategoryNavigate Category = "navigate"
	CategoryScroll   Category = "scroll"
	CategoryFollow   Category = "follow"
	CategoryLike     Category = "like"
	CategoryComment  Category = "comment"
)

// Categories lists every category in a stable order.
var Categories = []Category{
	CategoryNavigate,
	CategoryScroll,
	CategoryFollow,
	CategoryLike,
	CategoryComment,
}

// ActionKind names one executor operation.
type ActionKind string

const (
	ActionNavigateHome    ActionKind = "navigate_home"
	ActionNavigateProfile ActionKind = "navigate_profile"
	ActionScrollFeed      ActionKind = "scroll_feed"
	ActionScrollProfile   ActionKind = "scroll_profile"
	ActionFollow          ActionKind = "follow"
	ActionLike            ActionKind = "like"
	ActionLikeMultiple    ActionKind = "like_multiple"
	ActionComment         ActionKind = "comment"
)

// ActionKinds lists every kind the executor must handle.
var ActionKinds = []ActionKind{
	ActionNavigateHome,
	ActionNavigateProfile,
	ActionScrollFeed,
	ActionScrollProfile,
	ActionFollow,
	ActionLike,
	ActionLikeMultiple,
	ActionComment,
}

// Category returns the budget category an action kind is charged to.
func (k ActionKind) Category() Category {
	switch k {
	case ActionNavigateHome, ActionNavigateProfile:
		return CategoryNavigate
	case ActionScrollFeed, ActionScrollProfile:
		return CategoryScroll
	case ActionFollow:
		return CategoryFollow
	case ActionLike, ActionLikeMultiple:
		return CategoryLike
	case ActionComment:
		return CategoryComment
	}
	return ""
}

// ParseActionKind converts a user supplied string into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	for _, k := range ActionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action kind %q", s)
}

// ActionParams carries the optional arguments of ExecuteAction. Fields that
// do not apply to a kind are ignored.
type ActionParams struct {
	Username  string
	Count     int
	PostIndex int
	Text      string
}
