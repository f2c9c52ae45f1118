package actions

import (
	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/selectors"
)

// DefaultScrolls is used when a scroll count is not positive.
const DefaultScrolls = 3

// NavigateHome opens the site's home feed.
func (e *Executor) NavigateHome() models.Outcome {
	return e.gated(models.ActionNavigateHome, func() models.Outcome {
		url := e.doc.HomeURL()
		e.logger.BrowserAction("navigate", url)

		if err := e.page.Navigate(url, browser.WaitDOMContentLoaded); err != nil {
			return failure(models.ActionNavigateHome, models.ErrNavigation, "failed to open home page: %v", err)
		}
		e.timing.Delay("page_load")

		if !e.resolver.Exists(selectors.HomeFeed, nil) {
			e.logger.Debug("Home feed container not found, continuing")
		}

		o := models.Success(models.ActionNavigateHome, "navigated to home feed")
		o.URL = url
		return o
	})
}

// NavigateToProfile opens the profile page of username.
func (e *Executor) NavigateToProfile(username string) models.Outcome {
	return e.gated(models.ActionNavigateProfile, func() models.Outcome {
		if username == "" {
			return failure(models.ActionNavigateProfile, models.ErrConfiguration, "username is required")
		}
		url := e.doc.ProfileURL(username)
		e.logger.BrowserAction("navigate", url)

		if err := e.page.Navigate(url, browser.WaitDOMContentLoaded); err != nil {
			o := failure(models.ActionNavigateProfile, models.ErrNavigation, "failed to open profile %s: %v", username, err)
			o.Username = username
			return o
		}
		e.timing.Delay("page_load")

		if !e.resolver.Exists(selectors.ProfileHeader, nil) {
			o := failure(models.ActionNavigateProfile, models.ErrNavigation, "profile %s did not load", username)
			o.Username = username
			o.URL = url
			return o
		}

		o := models.Success(models.ActionNavigateProfile, "navigated to profile "+username)
		o.Username = username
		o.URL = url
		return o
	})
}

// ScrollFeed scrolls the home feed count times.
func (e *Executor) ScrollFeed(count int) models.Outcome {
	return e.gated(models.ActionScrollFeed, func() models.Outcome {
		return e.scroll(models.ActionScrollFeed, count)
	})
}

// ScrollProfile scrolls the current profile count times.
func (e *Executor) ScrollProfile(count int) models.Outcome {
	return e.gated(models.ActionScrollProfile, func() models.Outcome {
		return e.scroll(models.ActionScrollProfile, count)
	})
}

func (e *Executor) scroll(kind models.ActionKind, count int) models.Outcome {
	if count <= 0 {
		count = DefaultScrolls
	}

	for i := 0; i < count; i++ {
		deltaY := float64(e.timing.Between(300, 800))
		if err := e.page.ScrollBy(deltaY); err != nil {
			o := failure(kind, models.ErrInteraction, "scroll %d of %d failed: %v", i+1, count, err)
			o.Scrolls = i
			return o
		}
		e.timing.Delay("between_scrolls")

		if e.timing.Chance(e.doc.Behavior.ReadPostProbability) {
			e.timing.Delay("read_post")
		}
	}

	o := models.Success(kind, "scrolled")
	o.Scrolls = count
	return o
}
