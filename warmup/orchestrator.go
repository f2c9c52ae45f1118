// Package warmup runs one campaign day: it turns the phase/day budget into a
// randomized plan of feed scrolls and profile visits and drives the action
// executor through it.
package warmup

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/nikshitha/social-warmup/actions"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/stealth"
)

// Store persists session results and profile visits.
type Store interface {
	SaveSession(result *models.SessionResult) error
	RecordProfileVisit(username string, followed bool, at time.Time) error
}

// Orchestrator owns the state of one warm-up session.
type Orchestrator struct {
	doc       *config.Document
	executor  *actions.Executor
	timing    *stealth.Timing
	rand      *rand.Rand
	store     Store
	now       func() time.Time
	sessionID string
	logger    *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore persists results and visits to s.
func WithStore(s Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSessionID fixes the session identifier.
func WithSessionID(id string) Option {
	return func(o *Orchestrator) {
		o.sessionID = id
	}
}

// NewOrchestrator creates an orchestrator. rng drives target sampling and
// per-profile choices; share it with the timing model for reproducible runs.
func NewOrchestrator(doc *config.Document, exec *actions.Executor, timing *stealth.Timing, rng *rand.Rand, log *logger.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}
	o := &Orchestrator{
		doc:      doc,
		executor: exec,
		timing:   timing,
		rand:     rng,
		now:      time.Now,
		logger:   log.WithModule("warmup"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.sessionID == "" {
		o.sessionID = uuid.NewString()
	}
	o.logger = o.logger.WithField("session_id", o.sessionID)
	return o
}

// SessionID returns the identifier stamped on this session's records.
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// ExecuteAction runs a single action outside of a planned session.
func (o *Orchestrator) ExecuteAction(kind models.ActionKind, params models.ActionParams) models.Outcome {
	return o.executor.ExecuteAction(kind, params)
}

// quotas are the randomized per-category totals of one session.
type quotas struct {
	profiles int
	follows  int
	likes    int
	comments int
}

func (o *Orchestrator) drawQuotas(b config.DayBudget) quotas {
	return quotas{
		profiles: o.between(b.ProfileVisits),
		follows:  o.between(b.Follows),
		likes:    o.between(b.Likes),
		comments: o.between(b.Comments),
	}
}

func (o *Orchestrator) between(r config.IntRange) int {
	return o.timing.Between(r.Min, r.Max)
}

// session carries the mutable state of one PerformWarmupSession call.
type session struct {
	result *models.SessionResult
	quotas quotas
}

func (s *session) record(bucket *[]models.Outcome, out models.Outcome) {
	*bucket = append(*bucket, out)
	if out.Status == models.StatusError {
		s.result.Statistics.Errors++
	}
	if out.Denied {
		s.result.Statistics.ActionsDenied++
	}
}

func (o *Orchestrator) setState(s *session, to models.SessionState) {
	o.logger.PhaseTransition(string(s.result.State), string(to))
	s.result.State = to
}

// PerformWarmupSession runs the full plan for (phase, day). The returned
// error is non-nil only when the budget is missing or the home page cannot be
// reached; the result is returned in every case.
func (o *Orchestrator) PerformWarmupSession(phase, day int) (*models.SessionResult, error) {
	s := &session{result: &models.SessionResult{
		SessionID: o.sessionID,
		Phase:     phase,
		Day:       day,
		State:     models.StateStart,
		StartedAt: o.now(),
	}}
	log := o.logger.WithFields(map[string]interface{}{"phase": phase, "day": day})
	log.Info("Starting warm-up session")

	budget, err := o.doc.DayBudget(phase, day)
	if err != nil {
		return o.fail(s, err, fmt.Sprintf("no budget configured for phase %d day %d", phase, day))
	}

	o.setState(s, models.StateHome)
	home := o.executor.NavigateHome()
	s.record(&s.result.FeedActivity, home)
	if !home.OK() {
		return o.fail(s, fmt.Errorf("%w: %s", models.ErrNavigation, home.Message), "could not reach home page: "+home.Message)
	}

	o.setState(s, models.StateFeedScroll)
	o.scrollFeed(s, o.between(budget.FeedScrolls))

	s.quotas = o.drawQuotas(budget)
	targets := o.selectTargets(s.quotas.profiles)
	log.WithFields(map[string]interface{}{
		"profiles": len(targets),
		"follows":  s.quotas.follows,
		"likes":    s.quotas.likes,
		"comments": s.quotas.comments,
	}).Info("Session plan")

	o.setState(s, models.StateProfileLoop)
	for i, username := range targets {
		log.WithFields(map[string]interface{}{
			"profile":  username,
			"position": i + 1,
			"of":       len(targets),
		}).Info("Visiting profile")
		o.visitProfile(s, phase, username)
		o.timing.Delay("between_profiles")
	}

	o.setState(s, models.StateFinalize)
	final := o.executor.NavigateHome()
	s.record(&s.result.FeedActivity, final)
	if !final.OK() {
		return o.fail(s, fmt.Errorf("%w: %s", models.ErrNavigation, final.Message), "could not return to home page: "+final.Message)
	}

	o.setState(s, models.StateDone)
	s.result.Status = models.StatusSuccess
	s.result.Message = "warm-up session completed"
	s.result.FinishedAt = o.now()
	o.save(s.result)

	st := s.result.Statistics
	log.WithFields(map[string]interface{}{
		"feed_scrolls":      st.FeedScrolls,
		"profiles_visited":  st.ProfilesVisited,
		"follows_performed": st.FollowsPerformed,
		"likes_given":       st.LikesGiven,
		"comments_made":     st.CommentsMade,
		"actions_denied":    st.ActionsDenied,
		"errors":            st.Errors,
	}).Info("Warm-up session completed")
	return s.result, nil
}

func (o *Orchestrator) fail(s *session, err error, msg string) (*models.SessionResult, error) {
	o.setState(s, models.StateError)
	s.result.Status = models.StatusError
	s.result.Message = msg
	s.result.FinishedAt = o.now()
	o.logger.WithError(err).Error("Warm-up session failed")
	o.save(s.result)
	return s.result, err
}

func (o *Orchestrator) save(result *models.SessionResult) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveSession(result); err != nil {
		o.logger.WithError(err).Warn("Failed to persist session result")
	}
}

func (o *Orchestrator) scrollFeed(s *session, count int) {
	if count <= 0 {
		return
	}
	out := o.executor.ScrollFeed(count)
	s.record(&s.result.FeedActivity, out)
	s.result.Statistics.FeedScrolls += out.Scrolls
}

// visitProfile runs the per-profile steps. A failed navigation skips the
// rest of the profile.
func (o *Orchestrator) visitProfile(s *session, phase int, username string) {
	stats := &s.result.Statistics

	nav := o.executor.NavigateToProfile(username)
	s.record(&s.result.ProfileVisits, nav)
	if !nav.OK() {
		o.logger.WithField("profile", username).Warn("Skipping profile: " + nav.Message)
		return
	}
	stats.ProfilesVisited++

	s.record(&s.result.ProfileVisits, o.executor.ScrollProfile(o.timing.Between(2, 4)))

	followed := false
	if stats.FollowsPerformed < s.quotas.follows {
		out := o.executor.Follow(username)
		s.record(&s.result.Follows, out)
		if out.OK() {
			stats.FollowsPerformed++
			followed = true
		}
	}

	if remaining := s.quotas.likes - stats.LikesGiven; remaining > 0 {
		batch := o.timing.Between(1, 3)
		if batch > remaining {
			batch = remaining
		}
		out := o.executor.LikeMultiple(batch)
		out.Username = username
		s.record(&s.result.Likes, out)
		stats.LikesGiven += out.Successful
	}

	if phase >= 2 && stats.CommentsMade < s.quotas.comments {
		out := o.executor.Comment(0, "")
		out.Username = username
		s.record(&s.result.Comments, out)
		if out.OK() {
			stats.CommentsMade++
		}
	}

	if o.store != nil {
		if err := o.store.RecordProfileVisit(username, followed, o.now()); err != nil {
			o.logger.WithError(err).Warn("Failed to record profile visit")
		}
	}

	if o.timing.Chance(o.doc.Behavior.ReturnHomeProbability) {
		o.logger.Debug("Taking a detour through the home feed")
		home := o.executor.NavigateHome()
		s.record(&s.result.FeedActivity, home)
		if home.OK() {
			o.scrollFeed(s, o.timing.Between(1, 2))
		}
	}
}

// selectTargets samples up to ceil(n/categories)+1 usernames per target
// category, shuffles them and keeps the first n.
func (o *Orchestrator) selectTargets(n int) []string {
	categories := o.doc.TargetCategories()
	if n <= 0 || len(categories) == 0 {
		return nil
	}
	perCategory := (n+len(categories)-1)/len(categories) + 1

	seen := make(map[string]bool)
	var targets []string
	for _, category := range categories {
		profiles := o.doc.Targets[category]
		k := perCategory
		if k > len(profiles) {
			k = len(profiles)
		}
		for _, idx := range o.rand.Perm(len(profiles))[:k] {
			username := profiles[idx]
			if username == "" || seen[username] {
				continue
			}
			seen[username] = true
			targets = append(targets, username)
		}
	}

	o.rand.Shuffle(len(targets), func(i, j int) {
		targets[i], targets[j] = targets[j], targets[i]
	})
	if len(targets) > n {
		targets = targets[:n]
	}
	return targets
}
