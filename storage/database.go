// Package storage persists the action log, session results and visited
// profiles in SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/risk"
	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width ISO-8601 layout so stored timestamps sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Database wraps SQLite database operations
type Database struct {
	db     *sql.DB
	logger *logger.Logger
}

// Profile is a target profile the warm-up has visited
type Profile struct {
	Username       string    `json:"username"`
	Visits         int       `json:"visits"`
	Followed       bool      `json:"followed"`
	FirstVisitedAt time.Time `json:"first_visited_at"`
	LastVisitedAt  time.Time `json:"last_visited_at"`
}

// SessionRecord is a stored planner run
type SessionRecord struct {
	ID         string            `json:"id"`
	Phase      int               `json:"phase"`
	Day        int               `json:"day"`
	Status     models.Status     `json:"status"`
	State      string            `json:"state"`
	Message    string            `json:"message"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Statistics models.Statistics `json:"statistics"`
}

// DailyStats counts logged actions per category for one day
type DailyStats struct {
	Date        string `json:"date"`
	Navigations int    `json:"navigations"`
	Scrolls     int    `json:"scrolls"`
	Follows     int    `json:"follows"`
	Likes       int    `json:"likes"`
	Comments    int    `json:"comments"`
}

// NewDatabase creates a new database connection
func NewDatabase(dbPath string, log *logger.Logger) (*Database, error) {
	if log == nil {
		log = logger.NewNop()
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	database := &Database{
		db:     db,
		logger: log.WithModule("storage"),
	}

	// Initialize schema
	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	database.logger.Info("Database initialized successfully")
	return database, nil
}

// initSchema creates the database tables if they don't exist
func (d *Database) initSchema() error {
	schema := `
	-- Action log, one row per executed action
	CREATE TABLE IF NOT EXISTS action_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT
	);

	-- Planner runs
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		phase INTEGER NOT NULL,
		day INTEGER NOT NULL,
		status TEXT NOT NULL,
		state TEXT NOT NULL,
		message TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		statistics TEXT NOT NULL
	);

	-- Visited target profiles
	CREATE TABLE IF NOT EXISTS profiles (
		username TEXT PRIMARY KEY,
		visits INTEGER DEFAULT 0,
		followed BOOLEAN DEFAULT 0,
		first_visited_at TEXT NOT NULL,
		last_visited_at TEXT NOT NULL
	);

	-- Daily stats table
	CREATE TABLE IF NOT EXISTS daily_stats (
		date TEXT PRIMARY KEY,
		navigations INTEGER DEFAULT 0,
		scrolls INTEGER DEFAULT 0,
		follows INTEGER DEFAULT 0,
		likes INTEGER DEFAULT 0,
		comments INTEGER DEFAULT 0
	);

	-- Create indexes
	CREATE INDEX IF NOT EXISTS idx_action_log_timestamp ON action_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ==============================================================================
// Action Log Operations
// ==============================================================================

// ActionSink mirrors a tracker's action log into the database
type ActionSink struct {
	db        *Database
	sessionID string
}

// ActionSink returns a risk.Sink that tags every entry with sessionID
func (d *Database) ActionSink(sessionID string) *ActionSink {
	return &ActionSink{db: d, sessionID: sessionID}
}

// SaveAction implements risk.Sink
func (s *ActionSink) SaveAction(entry risk.Entry) error {
	return s.db.SaveAction(s.sessionID, entry)
}

// SaveAction appends one action log record and bumps the daily counter
func (d *Database) SaveAction(sessionID string, entry risk.Entry) error {
	query := `INSERT INTO action_log (session_id, timestamp, category, status, message) VALUES (?, ?, ?, ?, ?)`

	_, err := d.db.Exec(query, sessionID, formatTime(entry.Timestamp), string(entry.Category), string(entry.Outcome), entry.Message)
	if err != nil {
		return fmt.Errorf("failed to save action: %w", err)
	}

	return d.incrementDailyStat(entry.Timestamp, entry.Category)
}

// ActionsSince returns action log entries recorded at or after since, in
// log order
func (d *Database) ActionsSince(since time.Time) ([]risk.Entry, error) {
	query := `SELECT timestamp, category, status, message FROM action_log WHERE timestamp >= ? ORDER BY id`

	rows, err := d.db.Query(query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var entries []risk.Entry
	for rows.Next() {
		var ts, category, status string
		var message sql.NullString
		if err := rows.Scan(&ts, &category, &status, &message); err != nil {
			return nil, err
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		entries = append(entries, risk.Entry{
			Timestamp: t,
			Category:  models.Category(category),
			Outcome:   models.Status(status),
			Message:   message.String,
		})
	}

	return entries, rows.Err()
}

// ==============================================================================
// Session Operations
// ==============================================================================

// SaveSession stores or replaces a planner run
func (d *Database) SaveSession(result *models.SessionResult) error {
	stats, err := json.Marshal(result.Statistics)
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}

	query := `
		INSERT INTO sessions (id, phase, day, status, state, message, started_at, finished_at, statistics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			state = excluded.state,
			message = excluded.message,
			finished_at = excluded.finished_at,
			statistics = excluded.statistics
	`

	_, err = d.db.Exec(query,
		result.SessionID, result.Phase, result.Day, string(result.Status), string(result.State),
		result.Message, formatTime(result.StartedAt), formatTime(result.FinishedAt), string(stats),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	d.logger.WithField("session_id", result.SessionID).Debug("Session saved")
	return nil
}

// SessionHistory returns the most recent sessions, newest first
func (d *Database) SessionHistory(limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, phase, day, status, state, message, started_at, finished_at, statistics FROM sessions ORDER BY started_at DESC LIMIT ?`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []*SessionRecord
	for rows.Next() {
		rec := &SessionRecord{}
		var status, started, finished, stats string
		var message sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Phase, &rec.Day, &status, &rec.State, &message, &started, &finished, &stats); err != nil {
			return nil, err
		}
		rec.Status = models.Status(status)
		rec.Message = message.String
		if rec.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if rec.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stats), &rec.Statistics); err != nil {
			return nil, fmt.Errorf("failed to decode statistics: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ==============================================================================
// Profile Operations
// ==============================================================================

// RecordProfileVisit saves a visit to username. followed is sticky once set.
func (d *Database) RecordProfileVisit(username string, followed bool, at time.Time) error {
	query := `
		INSERT INTO profiles (username, visits, followed, first_visited_at, last_visited_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			visits = visits + 1,
			followed = followed OR excluded.followed,
			last_visited_at = excluded.last_visited_at
	`

	ts := formatTime(at)
	if _, err := d.db.Exec(query, username, followed, ts, ts); err != nil {
		return fmt.Errorf("failed to record profile visit: %w", err)
	}

	d.logger.WithField("username", username).Debug("Profile visit recorded")
	return nil
}

// GetProfile retrieves a visited profile, or nil if it was never visited
func (d *Database) GetProfile(username string) (*Profile, error) {
	query := `SELECT username, visits, followed, first_visited_at, last_visited_at FROM profiles WHERE username = ?`

	profile := &Profile{}
	var first, last string
	err := d.db.QueryRow(query, username).Scan(&profile.Username, &profile.Visits, &profile.Followed, &first, &last)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.FirstVisitedAt, err = parseTime(first); err != nil {
		return nil, err
	}
	if profile.LastVisitedAt, err = parseTime(last); err != nil {
		return nil, err
	}
	return profile, nil
}

// ==============================================================================
// Statistics Operations
// ==============================================================================

var dailyStatColumns = map[models.Category]string{
	models.CategoryNavigate: "navigations",
	models.CategoryScroll:   "scrolls",
	models.CategoryFollow:   "follows",
	models.CategoryLike:     "likes",
	models.CategoryComment:  "comments",
}

// GetDailyStats returns the per-category counters of the day containing t
func (d *Database) GetDailyStats(t time.Time) (*DailyStats, error) {
	date := t.UTC().Format("2006-01-02")
	query := `SELECT date, navigations, scrolls, follows, likes, comments FROM daily_stats WHERE date = ?`

	stats := &DailyStats{Date: date}
	err := d.db.QueryRow(query, date).Scan(
		&stats.Date, &stats.Navigations, &stats.Scrolls, &stats.Follows, &stats.Likes, &stats.Comments,
	)

	if err == sql.ErrNoRows {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// incrementDailyStat increments a daily stat counter
func (d *Database) incrementDailyStat(t time.Time, category models.Category) error {
	column, ok := dailyStatColumns[category]
	if !ok {
		return nil
	}
	date := t.UTC().Format("2006-01-02")

	// Ensure row exists
	if _, err := d.db.Exec(`INSERT OR IGNORE INTO daily_stats (date) VALUES (?)`, date); err != nil {
		return err
	}

	// Increment the stat
	updateQuery := fmt.Sprintf(`UPDATE daily_stats SET %s = %s + 1 WHERE date = ?`, column, column)
	_, err := d.db.Exec(updateQuery, date)
	return err
}

var _ risk.Sink = (*ActionSink)(nil)
