package models

import "time"

// Status is the tag of an Outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusInfo    Status = "info"
	StatusError   Status = "error"
)

// Outcome is the structured result of one action invocation. Status is
// always set; the remaining fields depend on the action.
type Outcome struct {
	Kind     ActionKind `json:"kind"`
	Status   Status     `json:"status"`
	Message  string     `json:"message"`
	Error    string     `json:"error,omitempty"`
	Username string     `json:"username,omitempty"`
	URL      string     `json:"url,omitempty"`
	// Denied is set when the risk check refused the action.
	Denied   bool       `json:"denied,omitempty"`

	PostIndex int    `json:"post_index,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Scrolls   int    `json:"scrolls,omitempty"`

	// Batch like tallies.
	Requested    int `json:"requested,omitempty"`
	Processed    int `json:"processed,omitempty"`
	Successful   int `json:"successful,omitempty"`
	AlreadyLiked int `json:"already_liked,omitempty"`
	Failed       int `json:"failed,omitempty"`
}

// Success builds a success outcome.
func Success(kind ActionKind, msg string) Outcome {
	return Outcome{Kind: kind, Status: StatusSuccess, Message: msg}
}

// Info builds an info outcome.
func Info(kind ActionKind, msg string) Outcome {
	return Outcome{Kind: kind, Status: StatusInfo, Message: msg}
}

// Failure builds an error outcome. err classifies the failure and may be nil.
func Failure(kind ActionKind, msg string, err error) Outcome {
	o := Outcome{Kind: kind, Status: StatusError, Message: msg}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// SessionState is a node of the planner state machine.
type SessionState string

const (
	StateStart       SessionState = "start"
	StateHome        SessionState = "home"
	StateFeedScroll  SessionState = "feed_scroll"
	StateProfileLoop SessionState = "profile_loop"
	StateFinalize    SessionState = "finalize"
	StateDone        SessionState = "done"
	StateError       SessionState = "error"
)

// Statistics summarises one session.
type Statistics struct {
	FeedScrolls      int `json:"feed_scrolls"`
	ProfilesVisited  int `json:"profiles_visited"`
	FollowsPerformed int `json:"follows_performed"`
	LikesGiven       int `json:"likes_given"`
	CommentsMade     int `json:"comments_made"`
	ActionsDenied    int `json:"actions_denied"`
	Errors           int `json:"errors"`
}

// SessionResult aggregates every outcome of one planner run.
type SessionResult struct {
	SessionID  string       `json:"session_id"`
	Phase      int          `json:"phase"`
	Day        int          `json:"day"`
	Status     Status       `json:"status"`
	Message    string       `json:"message"`
	State      SessionState `json:"state"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`

	FeedActivity  []Outcome `json:"feed_activity"`
	ProfileVisits []Outcome `json:"profile_visits"`
	Follows       []Outcome `json:"follows"`
	Likes         []Outcome `json:"likes"`
	Comments      []Outcome `json:"comments"`

	Statistics Statistics `json:"statistics"`
}
