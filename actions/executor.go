// Package actions performs single warm-up actions against the page and
// reports each result as a models.Outcome.
package actions

import (
	"fmt"
	"math/rand"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/selectors"
	"github.com/nikshitha/social-warmup/stealth"
)

// Guard gates and records executed actions.
type Guard interface {
	CheckActionRisk(c models.Category) bool
	LogAction(c models.Category, outcome models.Outcome)
}

type handler func(models.ActionParams) models.Outcome

// Executor performs one action at a time. It is not safe for concurrent use.
type Executor struct {
	page     browser.Page
	resolver *selectors.Resolver
	timing   *stealth.Timing
	guard    Guard
	doc      *config.Document
	rand     *rand.Rand
	logger   *logger.Logger
	handlers map[models.ActionKind]handler
}

// NewExecutor creates an executor. guard may be nil to run ungated.
func NewExecutor(page browser.Page, resolver *selectors.Resolver, timing *stealth.Timing, guard Guard, doc *config.Document, rng *rand.Rand, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNop()
	}
	e := &Executor{
		page:     page,
		resolver: resolver,
		timing:   timing,
		guard:    guard,
		doc:      doc,
		rand:     rng,
		logger:   log.WithModule("actions"),
	}
	e.handlers = map[models.ActionKind]handler{
		models.ActionNavigateHome: func(models.ActionParams) models.Outcome {
			return e.NavigateHome()
		},
		models.ActionNavigateProfile: func(p models.ActionParams) models.Outcome {
			return e.NavigateToProfile(p.Username)
		},
		models.ActionScrollFeed: func(p models.ActionParams) models.Outcome {
			return e.ScrollFeed(p.Count)
		},
		models.ActionScrollProfile: func(p models.ActionParams) models.Outcome {
			return e.ScrollProfile(p.Count)
		},
		models.ActionFollow: func(p models.ActionParams) models.Outcome {
			return e.Follow(p.Username)
		},
		models.ActionLike: func(p models.ActionParams) models.Outcome {
			return e.Like(p.PostIndex)
		},
		models.ActionLikeMultiple: func(p models.ActionParams) models.Outcome {
			return e.LikeMultiple(p.Count)
		},
		models.ActionComment: func(p models.ActionParams) models.Outcome {
			return e.Comment(p.PostIndex, p.Text)
		},
	}
	return e
}

// ExecuteAction runs the handler bound to kind.
func (e *Executor) ExecuteAction(kind models.ActionKind, params models.ActionParams) models.Outcome {
	h, ok := e.handlers[kind]
	if !ok {
		return models.Failure(kind, fmt.Sprintf("unknown action %q", kind),
			fmt.Errorf("%w: unknown action %q", models.ErrConfiguration, kind))
	}
	return h(params)
}

// gated checks the budget for kind, runs fn and records its outcome.
func (e *Executor) gated(kind models.ActionKind, fn func() models.Outcome) models.Outcome {
	category := kind.Category()
	log := e.logger.WithAction(string(kind))

	if e.guard != nil && !e.guard.CheckActionRisk(category) {
		o := models.Failure(kind, fmt.Sprintf("%s action denied by risk limits", category),
			fmt.Errorf("%w: %s", models.ErrActionDenied, category))
		o.Denied = true
		log.ActionOutcome(string(category), string(o.Status), o.Message)
		return o
	}

	o := fn()
	o.Kind = kind
	if e.guard != nil {
		e.guard.LogAction(category, o)
	}
	log.ActionOutcome(string(category), string(o.Status), o.Message)
	return o
}

func failure(kind models.ActionKind, class error, format string, args ...interface{}) models.Outcome {
	msg := fmt.Sprintf(format, args...)
	return models.Failure(kind, msg, fmt.Errorf("%w: %s", class, msg))
}
