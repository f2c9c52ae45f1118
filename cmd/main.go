// Social Warm-up - Main Application
// Runs one day of a phased warm-up campaign, a single action, or prints
// recent session statistics.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nikshitha/social-warmup/actions"
	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/risk"
	"github.com/nikshitha/social-warmup/selectors"
	"github.com/nikshitha/social-warmup/stealth"
	"github.com/nikshitha/social-warmup/storage"
	"github.com/nikshitha/social-warmup/warmup"
)

// Application holds all components of the warm-up tool
type Application struct {
	config    *config.Config
	doc       *config.Document
	logger    *logger.Logger
	browser   *browser.Browser
	db        *storage.Database
	scheduler *stealth.Scheduler
	tracker   *risk.Tracker
	sessionID string
}

// Command line flags
var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
	mode       = flag.String("mode", "session", "Run mode: session, action, stats")
	phase      = flag.Int("phase", 0, "Campaign phase (overrides config)")
	day        = flag.Int("day", 0, "Campaign day (overrides config)")
	action     = flag.String("action", "", "Action kind for -mode action (e.g. follow, like_multiple)")
	username   = flag.String("username", "", "Target username for profile actions")
	count      = flag.Int("count", 0, "Scroll or like count")
	postIndex  = flag.Int("post", 0, "Post index for like and comment")
	text       = flag.String("text", "", "Comment text (random generic comment if empty)")
	seed       = flag.Int64("seed", 0, "Random seed (overrides config, 0 = time based)")
	wait       = flag.Bool("wait", false, "Wait for operating hours instead of exiting")
	history    = flag.Int("history", 10, "Number of sessions shown by -mode stats")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("Note: No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if *phase > 0 {
		cfg.Warmup.Phase = *phase
	}
	if *day > 0 {
		cfg.Warmup.Day = *day
	}
	if *seed != 0 {
		cfg.Warmup.Seed = *seed
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputFile: cfg.Logging.OutputFile,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Social warm-up starting...")
	log.Infof("Mode: %s", *mode)

	app, err := NewApplication(cfg, log)
	if err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	setupGracefulShutdown(app)

	if err := app.Run(); err != nil {
		app.Close()
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
	app.Close()

	log.Info("Application completed successfully")
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *config.Config, log *logger.Logger) (*Application, error) {
	doc := config.LoadDocument(cfg.Warmup.DocumentPath, log)
	if baseURL := os.Getenv("SITE_BASE_URL"); baseURL != "" {
		doc.Site.BaseURL = baseURL
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sessionID := uuid.NewString()
	tracker := risk.NewTracker(doc.Limits, log, risk.WithSink(db.ActionSink(sessionID)))

	return &Application{
		config:    cfg,
		doc:       doc,
		logger:    log,
		browser:   browser.NewBrowser(cfg, log),
		db:        db,
		scheduler: stealth.NewScheduler(&cfg.Schedule, cfg.Location(), log),
		tracker:   tracker,
		sessionID: sessionID,
	}, nil
}

// Run executes the application based on the selected mode
func (app *Application) Run() error {
	if *mode == "stats" {
		return app.showStats()
	}
	if *mode != "session" && *mode != "action" {
		return fmt.Errorf("unknown mode: %s", *mode)
	}

	// Check operating hours if scheduling is enabled
	if !app.scheduler.IsWithinOperatingHours(time.Now()) {
		if !*wait {
			next := app.scheduler.NextWindow(time.Now())
			return fmt.Errorf("outside operating hours, next window opens at %s (use -wait to sleep until then)", next.Format(time.RFC3339))
		}
		app.scheduler.WaitForOperatingHours(sleeper{})
	}

	if app.config.Warmup.Resume {
		if err := app.resume(); err != nil {
			app.logger.WithError(err).Warn("Could not restore the last hour of actions")
		}
	}

	// Launch browser
	if err := app.browser.Launch(); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	seed := app.config.Warmup.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	app.logger.WithField("seed", seed).Debug("Random source ready")

	specs, err := selectors.FromDocument(app.doc)
	if err != nil {
		return err
	}

	page := app.browser.Page()
	timing := stealth.NewTiming(app.doc, page, rng, app.logger)
	resolver := selectors.NewResolver(page, specs, app.logger)
	exec := actions.NewExecutor(page, resolver, timing, app.tracker, app.doc, rng, app.logger)
	orch := warmup.NewOrchestrator(app.doc, exec, timing, rng, app.logger,
		warmup.WithStore(app.db), warmup.WithSessionID(app.sessionID))

	if *mode == "action" {
		return app.runAction(orch)
	}
	return app.runSession(orch)
}

// resume seeds the tracker with the last hour of persisted actions
func (app *Application) resume() error {
	entries, err := app.db.ActionsSince(time.Now().Add(-risk.Window))
	if err != nil {
		return err
	}
	app.tracker.Seed(entries)
	return nil
}

// runSession runs one phase/day of the campaign
func (app *Application) runSession(orch *warmup.Orchestrator) error {
	result, err := orch.PerformWarmupSession(app.config.Warmup.Phase, app.config.Warmup.Day)
	if err != nil {
		shot := filepath.Join(filepath.Dir(app.config.Storage.DatabasePath), "screenshots", app.sessionID+".png")
		if shotErr := app.browser.TakeScreenshot(shot); shotErr != nil {
			app.logger.WithError(shotErr).Warn("Failed to capture failure screenshot")
		}
		return fmt.Errorf("session failed: %w", err)
	}

	st := result.Statistics
	app.logger.Info("=== Session Summary ===")
	app.logger.Infof("  Phase %d, day %d (%s)", result.Phase, result.Day, result.FinishedAt.Sub(result.StartedAt).Round(time.Second))
	app.logger.Infof("  Feed scrolls: %d", st.FeedScrolls)
	app.logger.Infof("  Profiles visited: %d", st.ProfilesVisited)
	app.logger.Infof("  Follows: %d", st.FollowsPerformed)
	app.logger.Infof("  Likes: %d", st.LikesGiven)
	app.logger.Infof("  Comments: %d", st.CommentsMade)
	app.logger.Infof("  Denied: %d, errors: %d", st.ActionsDenied, st.Errors)
	app.logger.Info("=======================")
	return nil
}

// runAction executes a single action
func (app *Application) runAction(orch *warmup.Orchestrator) error {
	kind, err := models.ParseActionKind(*action)
	if err != nil {
		return err
	}

	// Profile actions need the profile open first.
	switch kind {
	case models.ActionScrollProfile, models.ActionFollow, models.ActionLike, models.ActionLikeMultiple, models.ActionComment:
		if *username != "" {
			nav := orch.ExecuteAction(models.ActionNavigateProfile, models.ActionParams{Username: *username})
			if !nav.OK() {
				return fmt.Errorf("could not open profile %s: %s", *username, nav.Message)
			}
		}
	}

	out := orch.ExecuteAction(kind, models.ActionParams{
		Username:  *username,
		Count:     *count,
		PostIndex: *postIndex,
		Text:      *text,
	})
	app.logger.WithFields(map[string]interface{}{
		"kind":   out.Kind,
		"status": out.Status,
	}).Info(out.Message)

	if out.Status == models.StatusError {
		return fmt.Errorf("%s failed: %s", kind, out.Message)
	}
	return nil
}

// showStats prints recent sessions and today's counters
func (app *Application) showStats() error {
	records, err := app.db.SessionHistory(*history)
	if err != nil {
		return err
	}

	app.logger.Info("=== Recent Sessions ===")
	for _, r := range records {
		app.logger.Infof("  %s  phase %d day %d  %s  profiles=%d follows=%d likes=%d comments=%d",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Phase, r.Day, r.Status,
			r.Statistics.ProfilesVisited, r.Statistics.FollowsPerformed, r.Statistics.LikesGiven, r.Statistics.CommentsMade)
	}

	stats, err := app.db.GetDailyStats(time.Now())
	if err != nil {
		return err
	}
	app.logger.Info("=== Today's Activity ===")
	app.logger.Infof("  Navigations: %d", stats.Navigations)
	app.logger.Infof("  Scrolls: %d", stats.Scrolls)
	app.logger.Infof("  Follows: %d", stats.Follows)
	app.logger.Infof("  Likes: %d", stats.Likes)
	app.logger.Infof("  Comments: %d", stats.Comments)

	if err := app.resume(); err != nil {
		return err
	}
	hourly := app.tracker.Counts()
	app.logger.Info("=== Last Hour ===")
	for _, c := range models.Categories {
		limit, _ := app.doc.CategoryLimit(c)
		app.logger.Infof("  %s: %d / %d", c, hourly[c], limit.MaxPerHour)
	}
	if entries := app.tracker.Entries(); len(entries) > 0 {
		last := entries[len(entries)-1]
		app.logger.Infof("  Last action: %s (%s) at %s", last.Category, last.Outcome, last.Timestamp.Local().Format("15:04:05"))
	}
	app.logger.Info("========================")
	return nil
}

// Close cleans up application resources
func (app *Application) Close() {
	app.logger.Info("Shutting down...")

	if app.browser != nil {
		app.browser.Close()
	}

	if app.db != nil {
		app.db.Close()
	}

	app.logger.Info("Cleanup complete")
}

// setupGracefulShutdown handles OS signals for graceful shutdown
func setupGracefulShutdown(app *Application) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		app.logger.Infof("Received signal: %v", sig)
		app.Close()
		os.Exit(0)
	}()
}

// sleeper blocks on the wall clock
type sleeper struct{}

func (sleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}
