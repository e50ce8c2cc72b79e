package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewValidatesScheme(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "ftp://host", "  www.example.com"} {
		if _, err := New(raw); !errors.Is(err, ErrInvalidBaseURL) {
			t.Fatalf("New(%q): expected ErrInvalidBaseURL, got %v", raw, err)
		}
	}
}

func TestNewNormalizesBaseURL(t *testing.T) {
	sess, err := New("  https://abc.ngrok.io/  ")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sess.BaseURL() != "https://abc.ngrok.io" {
		t.Fatalf("unexpected base url %q", sess.BaseURL())
	}
	if sess.Endpoint("/chat") != "https://abc.ngrok.io/chat" {
		t.Fatalf("unexpected endpoint %q", sess.Endpoint("/chat"))
	}
	if sess.Endpoint("chat") != "https://abc.ngrok.io/chat" {
		t.Fatalf("unexpected endpoint without slash %q", sess.Endpoint("chat"))
	}
	if sess.ID() == "" {
		t.Fatalf("expected session id")
	}
}

func TestStartPromptsForBaseURL(t *testing.T) {
	var out bytes.Buffer
	lines := NewLineReader(strings.NewReader("http://localhost:8000\n"))

	sess, err := Start(context.Background(), lines, &out, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.BaseURL() != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", sess.BaseURL())
	}
	if out.String() != baseURLPrompt {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestStartUsesPresetWithoutPrompt(t *testing.T) {
	var out bytes.Buffer
	lines := NewLineReader(strings.NewReader(""))

	sess, err := Start(context.Background(), lines, &out, "http://preset")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.BaseURL() != "http://preset" || out.Len() != 0 {
		t.Fatalf("unexpected session %q output %q", sess.BaseURL(), out.String())
	}
}

func TestStartRejectsInvalidURL(t *testing.T) {
	var out bytes.Buffer
	lines := NewLineReader(strings.NewReader("localhost:8000\nexit\n"))

	_, err := Start(context.Background(), lines, &out, "")
	if !errors.Is(err, ErrInvalidBaseURL) {
		t.Fatalf("expected ErrInvalidBaseURL, got %v", err)
	}
	if !strings.HasSuffix(out.String(), invalidURLText+"\n") {
		t.Fatalf("expected invalid message, got %q", out.String())
	}
	if strings.Contains(out.String(), "Connected to") {
		t.Fatalf("loop must not start on invalid url")
	}
}

func TestStartEmptyInputIsInvalid(t *testing.T) {
	var out bytes.Buffer
	_, err := Start(context.Background(), NewLineReader(strings.NewReader("")), &out, "")
	if !errors.Is(err, ErrInvalidBaseURL) {
		t.Fatalf("expected ErrInvalidBaseURL on EOF, got %v", err)
	}
}
