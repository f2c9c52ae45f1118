package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/nikshitha/social-warmup/logger"
	"github.com/nikshitha/social-warmup/models"
	"gopkg.in/yaml.v3"
)

// Range is a {min,max} interval in seconds.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Duration bounds of the range.
func (r Range) Duration() (time.Duration, time.Duration) {
	return time.Duration(r.Min * float64(time.Second)), time.Duration(r.Max * float64(time.Second))
}

// IntRange is an inclusive {min,max} interval of counts.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// CategoryLimit bounds one action category. A MaxPerHour of 0 means the
// category has no hourly cap; the session limit still applies.
type CategoryLimit struct {
	MaxPerHour   int     `yaml:"max_per_hour"`
	CoolDownTime float64 `yaml:"cool_down_time"` // seconds
}

// CoolDown returns the cool-down as a duration.
func (l CategoryLimit) CoolDown() time.Duration {
	return time.Duration(l.CoolDownTime * float64(time.Second))
}

// Limits holds the global and per-category action limits.
type Limits struct {
	MaxActionsPerSession int                               `yaml:"max_actions_per_session"`
	EnforceCoolDown      bool                              `yaml:"enforce_cool_down"`
	Categories           map[models.Category]CategoryLimit `yaml:"categories"`
}

// Behavior holds the probabilities driving human-like variation.
type Behavior struct {
	ReadPostProbability        float64  `yaml:"read_post_probability"`
	ReturnHomeProbability      float64  `yaml:"return_home_probability"`
	TypingSpeed                IntRange `yaml:"typing_speed"` // milliseconds per character
	ErrorCorrectionProbability float64  `yaml:"error_correction_probability"`
	ThinkingPauseProbability   float64  `yaml:"thinking_pause_probability"`
}

// DayBudget is the per-category budget of one campaign day.
type DayBudget struct {
	FeedScrolls   IntRange `yaml:"feed_scrolls"`
	ProfileVisits IntRange `yaml:"profile_visits"`
	Follows       IntRange `yaml:"follows"`
	Likes         IntRange `yaml:"likes"`
	Comments      IntRange `yaml:"comments"`
}

// Site describes the remote application.
type Site struct {
	BaseURL     string `yaml:"base_url"`
	ProfilePath string `yaml:"profile_path"` // fmt pattern applied to the username
}

// StrategySpec is one element lookup strategy.
type StrategySpec struct {
	Kind string `yaml:"kind"` // css, xpath or text
	Expr string `yaml:"expr"`
	// Match is the text pattern for the text kind.
	Match string `yaml:"match,omitempty"`
}

// SelectorSpec overrides the lookup strategies of one element key.
type SelectorSpec struct {
	Primary   StrategySpec   `yaml:"primary"`
	Fallbacks []StrategySpec `yaml:"fallbacks"`
}

// Document is the warm-up configuration document. It is immutable once
// loaded.
type Document struct {
	Limits    Limits                    `yaml:"limits"`
	Delays    map[string]Range          `yaml:"delays"`
	Behavior  Behavior                  `yaml:"behavior"`
	Site      Site                      `yaml:"site"`
	Phases    map[int]map[int]DayBudget `yaml:"phases"`
	Targets   map[string][]string       `yaml:"targets"`
	Comments  []string                  `yaml:"comments"`
	Selectors map[string]SelectorSpec   `yaml:"selectors,omitempty"`
}

// DefaultDocument returns the built-in campaign document.
func DefaultDocument() *Document {
	return &Document{
		Limits: Limits{
			MaxActionsPerSession: 300,
			EnforceCoolDown:      false,
			Categories: map[models.Category]CategoryLimit{
				models.CategoryNavigate: {MaxPerHour: 120, CoolDownTime: 0},
				models.CategoryScroll:   {MaxPerHour: 240, CoolDownTime: 0},
				models.CategoryFollow:   {MaxPerHour: 15, CoolDownTime: 60},
				models.CategoryLike:     {MaxPerHour: 60, CoolDownTime: 10},
				models.CategoryComment:  {MaxPerHour: 8, CoolDownTime: 180},
			},
		},
		Delays: map[string]Range{
			"page_load":        {Min: 3, Max: 6},
			"between_scrolls":  {Min: 1, Max: 3},
			"read_post":        {Min: 3, Max: 8},
			"before_follow":    {Min: 2, Max: 5},
			"after_follow":     {Min: 1, Max: 3},
			"before_like":      {Min: 1, Max: 3},
			"after_like":       {Min: 1, Max: 2},
			"between_likes":    {Min: 2, Max: 6},
			"before_comment":   {Min: 3, Max: 7},
			"after_comment":    {Min: 2, Max: 4},
			"between_profiles": {Min: 15, Max: 45},
		},
		Behavior: Behavior{
			ReadPostProbability:        0.3,
			ReturnHomeProbability:      0.3,
			TypingSpeed:                IntRange{Min: 50, Max: 150},
			ErrorCorrectionProbability: 0.02,
			ThinkingPauseProbability:   0.05,
		},
		Site: Site{
			BaseURL:     "https://www.instagram.com",
			ProfilePath: "/%s/",
		},
		Phases: map[int]map[int]DayBudget{
			1: {
				1: {FeedScrolls: IntRange{3, 5}, ProfileVisits: IntRange{2, 3}, Follows: IntRange{0, 1}, Likes: IntRange{1, 3}, Comments: IntRange{0, 0}},
				2: {FeedScrolls: IntRange{4, 6}, ProfileVisits: IntRange{3, 4}, Follows: IntRange{1, 2}, Likes: IntRange{2, 5}, Comments: IntRange{0, 0}},
				3: {FeedScrolls: IntRange{4, 7}, ProfileVisits: IntRange{3, 5}, Follows: IntRange{1, 3}, Likes: IntRange{3, 6}, Comments: IntRange{0, 0}},
			},
			2: {
				1: {FeedScrolls: IntRange{5, 8}, ProfileVisits: IntRange{4, 6}, Follows: IntRange{2, 4}, Likes: IntRange{5, 8}, Comments: IntRange{0, 1}},
				2: {FeedScrolls: IntRange{5, 8}, ProfileVisits: IntRange{5, 7}, Follows: IntRange{3, 5}, Likes: IntRange{6, 10}, Comments: IntRange{1, 2}},
				3: {FeedScrolls: IntRange{6, 9}, ProfileVisits: IntRange{5, 8}, Follows: IntRange{3, 6}, Likes: IntRange{8, 12}, Comments: IntRange{1, 2}},
			},
			3: {
				1: {FeedScrolls: IntRange{6, 10}, ProfileVisits: IntRange{6, 9}, Follows: IntRange{4, 7}, Likes: IntRange{10, 15}, Comments: IntRange{2, 3}},
				2: {FeedScrolls: IntRange{6, 10}, ProfileVisits: IntRange{7, 10}, Follows: IntRange{5, 8}, Likes: IntRange{12, 18}, Comments: IntRange{2, 4}},
			},
		},
		Targets: map[string][]string{
			"influencers": {"sample.creator.one", "sample.creator.two", "sample.creator.three", "sample.creator.four"},
			"news":        {"sample.news.daily", "sample.news.world", "sample.news.local"},
			"politicians": {"sample.council.member", "sample.city.mayor"},
			"brands":      {"sample.brand.coffee", "sample.brand.outdoor", "sample.brand.books"},
		},
		Comments: []string{
			"Great post!",
			"Love this 🙌",
			"So true",
			"Amazing shot",
			"This is awesome",
			"Thanks for sharing",
			"Beautiful!",
			"Nice one",
		},
	}
}

// LoadDocument reads the warm-up document at path. A missing, unreadable,
// unparsable or invalid document yields DefaultDocument(); the reason is
// logged. Sections missing from an otherwise valid file take their default.
func LoadDocument(path string, log *logger.Logger) *Document {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithModule("config")

	doc, err := ParseDocumentFile(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Using built-in warm-up document")
		return DefaultDocument()
	}
	return doc
}

// ParseDocumentFile reads and parses a document, returning an error wrapping
// models.ErrConfiguration on any problem.
func ParseDocumentFile(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no document path", models.ErrConfiguration)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read document: %v", models.ErrConfiguration, err)
	}
	return ParseDocument(data)
}

// ParseDocument parses document bytes and validates the result. Keys the
// file omits keep their default values; limit categories merge per key.
func ParseDocument(data []byte) (*Document, error) {
	doc := DefaultDocument()
	doc.Limits.Categories = nil
	doc.Phases = nil
	doc.Targets = nil
	doc.Comments = nil
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse document: %v", models.ErrConfiguration, err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// applyDefaults fills what the file left out.
func (d *Document) applyDefaults() {
	def := DefaultDocument()

	if d.Limits.MaxActionsPerSession == 0 {
		d.Limits.MaxActionsPerSession = def.Limits.MaxActionsPerSession
	}
	if d.Limits.Categories == nil {
		d.Limits.Categories = make(map[models.Category]CategoryLimit, len(def.Limits.Categories))
	}
	for c, l := range def.Limits.Categories {
		if _, ok := d.Limits.Categories[c]; !ok {
			d.Limits.Categories[c] = l
		}
	}
	if d.Delays == nil {
		d.Delays = def.Delays
	}
	if d.Behavior.TypingSpeed == (IntRange{}) {
		d.Behavior.TypingSpeed = def.Behavior.TypingSpeed
	}
	if d.Site.BaseURL == "" {
		d.Site.BaseURL = def.Site.BaseURL
	}
	if d.Site.ProfilePath == "" {
		d.Site.ProfilePath = def.Site.ProfilePath
	}
	if d.Phases == nil {
		d.Phases = def.Phases
	}
	if d.Targets == nil {
		d.Targets = def.Targets
	}
	if d.Comments == nil {
		d.Comments = def.Comments
	}
}

// Validate checks ranges, probabilities and limits.
func (d *Document) Validate() error {
	var errs []error

	if d.Limits.MaxActionsPerSession <= 0 {
		errs = append(errs, errors.New("max_actions_per_session must be positive"))
	}
	for cat, l := range d.Limits.Categories {
		if l.MaxPerHour < 0 || l.CoolDownTime < 0 {
			errs = append(errs, fmt.Errorf("limits for %s must not be negative", cat))
		}
	}
	for name, r := range d.Delays {
		if r.Min < 0 || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("delay %s has invalid range {%v,%v}", name, r.Min, r.Max))
		}
	}

	probs := map[string]float64{
		"read_post_probability":        d.Behavior.ReadPostProbability,
		"return_home_probability":      d.Behavior.ReturnHomeProbability,
		"error_correction_probability": d.Behavior.ErrorCorrectionProbability,
		"thinking_pause_probability":   d.Behavior.ThinkingPauseProbability,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1]", name))
		}
	}
	if !validIntRange(d.Behavior.TypingSpeed) {
		errs = append(errs, errors.New("typing_speed has invalid range"))
	}

	if len(d.Phases) == 0 {
		errs = append(errs, errors.New("at least one phase is required"))
	}
	for phase, days := range d.Phases {
		for day, b := range days {
			for name, r := range map[string]IntRange{
				"feed_scrolls":   b.FeedScrolls,
				"profile_visits": b.ProfileVisits,
				"follows":        b.Follows,
				"likes":          b.Likes,
				"comments":       b.Comments,
			} {
				if !validIntRange(r) {
					errs = append(errs, fmt.Errorf("phase %d day %d: %s has invalid range {%d,%d}", phase, day, name, r.Min, r.Max))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", models.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

func validIntRange(r IntRange) bool {
	return r.Min >= 0 && r.Max >= r.Min
}

// DayBudget returns the budget for (phase, day).
func (d *Document) DayBudget(phase, day int) (DayBudget, error) {
	days, ok := d.Phases[phase]
	if !ok {
		return DayBudget{}, fmt.Errorf("%w: no configuration for phase %d", models.ErrConfiguration, phase)
	}
	b, ok := days[day]
	if !ok {
		return DayBudget{}, fmt.Errorf("%w: no configuration for phase %d day %d", models.ErrConfiguration, phase, day)
	}
	return b, nil
}

// CategoryLimit returns the limits of a category.
func (d *Document) CategoryLimit(c models.Category) (CategoryLimit, bool) {
	l, ok := d.Limits.Categories[c]
	return l, ok
}

// TargetCategories returns the target category names in sorted order.
func (d *Document) TargetCategories() []string {
	names := make([]string, 0, len(d.Targets))
	for name := range d.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HomeURL returns the site's home page.
func (d *Document) HomeURL() string {
	return d.Site.BaseURL + "/"
}

// ProfileURL returns the profile page of username.
func (d *Document) ProfileURL(username string) string {
	return d.Site.BaseURL + fmt.Sprintf(d.Site.ProfilePath, username)
}
