package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidBaseURL is returned when the base URL lacks an HTTP scheme prefix.
var ErrInvalidBaseURL = errors.New("invalid base url")

const (
	baseURLPrompt  = "Enter your base URL: "
	invalidURLText = "Invalid URL."
	schemePrefix   = "http"
)

// Session holds the validated base URL for the lifetime of the program.
type Session struct {
	id      string
	baseURL string
}

// New validates raw and returns a Session. Surrounding whitespace and trailing slashes are dropped.
func New(raw string) (*Session, error) {
	base := strings.TrimSpace(raw)
	if !strings.HasPrefix(base, schemePrefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, base)
	}
	base = strings.TrimRight(base, "/")
	return &Session{id: uuid.NewString(), baseURL: base}, nil
}

// ID identifies the session in recorded exchanges.
func (s *Session) ID() string { return s.id }

// BaseURL returns the validated base URL.
func (s *Session) BaseURL() string { return s.baseURL }

// Endpoint joins path onto the base URL.
func (s *Session) Endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// Start resolves the base URL, prompting on out and reading from lines when preset is empty.
// An invalid URL is reported on out and ErrInvalidBaseURL is returned.
func Start(ctx context.Context, lines *LineReader, out io.Writer, preset string) (*Session, error) {
	raw := preset
	if strings.TrimSpace(raw) == "" {
		fmt.Fprint(out, baseURLPrompt)
		line, err := lines.Next(ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read base url: %w", err)
		}
		raw = line
	}

	sess, err := New(raw)
	if err != nil {
		fmt.Fprintln(out, invalidURLText)
		return nil, err
	}
	return sess, nil
}
