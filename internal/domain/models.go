package domain

import "time"

// Outcome classifies how a single query ended.
type Outcome string

const (
	OutcomeAnswer    Outcome = "answer"
	OutcomeStatus    Outcome = "status_error"
	OutcomeTransport Outcome = "transport_error"
)

// Exchange is one query and the response it produced.
type Exchange struct {
	SessionID  string    `json:"session_id"`
	Sequence   int       `json:"sequence"`
	Query      string    `json:"query"`
	Outcome    Outcome   `json:"outcome"`
	Answer     string    `json:"answer,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Body       string    `json:"body,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`
}
