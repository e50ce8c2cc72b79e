package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-chat/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Exchange    domain.Exchange `json:"exchange"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent wraps an exchange for publishing.
func NewEvent(ex domain.Exchange) Event {
	return Event{
		Exchange:    ex,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are attached as message attributes by queue/topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"session_id": e.Exchange.SessionID,
		"outcome":    string(e.Exchange.Outcome),
	}
}
