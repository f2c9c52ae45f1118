// Package selectors maps logical element keys to live elements by trying an
// ordered list of lookup strategies.
package selectors

import (
	"fmt"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
)

// Resolver finds elements by logical key.
type Resolver struct {
	page   browser.Page
	specs  map[string]Spec
	logger *logger.Logger
}

// NewResolver creates a resolver over a fixed selector table.
func NewResolver(page browser.Page, specs map[string]Spec, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	table := make(map[string]Spec, len(specs))
	for k, v := range specs {
		table[k] = v
	}
	return &Resolver{
		page:   page,
		specs:  table,
		logger: log.WithModule("selectors"),
	}
}

func (r *Resolver) spec(key string) (Spec, error) {
	spec, ok := r.specs[key]
	if !ok {
		return Spec{}, fmt.Errorf("%w: unknown selector key %q", models.ErrConfiguration, key)
	}
	return spec, nil
}

// FindOne returns the first element matched by the key's strategies, or nil
// when no strategy matches. scope may be nil for the whole page.
func (r *Resolver) FindOne(key string, scope browser.Element) (browser.Element, error) {
	spec, err := r.spec(key)
	if err != nil {
		return nil, err
	}

	for i, sel := range spec.Strategies() {
		el, err := r.page.QueryOne(sel, scope)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"key":      key,
				"selector": sel.String(),
				"error":    err.Error(),
			}).Debug("Selector lookup failed")
			continue
		}
		if el != nil {
			if i > 0 {
				r.logger.WithFields(map[string]interface{}{
					"key":      key,
					"selector": sel.String(),
				}).Debug("Resolved with fallback selector")
			}
			return el, nil
		}
	}

	r.logger.WithField("key", key).Debug("Element not present")
	return nil, nil
}

// FindAll returns the elements of the first strategy that matches at least
// one element. The result is empty when none does.
func (r *Resolver) FindAll(key string, scope browser.Element) ([]browser.Element, error) {
	spec, err := r.spec(key)
	if err != nil {
		return nil, err
	}

	for _, sel := range spec.Strategies() {
		els, err := r.page.QueryAll(sel, scope)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"key":      key,
				"selector": sel.String(),
				"error":    err.Error(),
			}).Debug("Selector lookup failed")
			continue
		}
		if len(els) > 0 {
			return els, nil
		}
	}
	return nil, nil
}

// Exists reports whether key resolves to an element. It is meant for the
// built-in keys declared in this package; callers that can receive other
// keys should use FindOne. An unknown key is logged as an error and reports
// false.
func (r *Resolver) Exists(key string, scope browser.Element) bool {
	el, err := r.FindOne(key, scope)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Selector table is missing a key")
		return false
	}
	return el != nil
}
