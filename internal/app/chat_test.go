package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samvad-hq/samvad-chat/internal/config"
	"github.com/samvad-hq/samvad-chat/internal/domain"
	"github.com/samvad-hq/samvad-chat/internal/history"
	"github.com/samvad-hq/samvad-chat/internal/session"
	"github.com/samvad-hq/samvad-chat/pkg/publishers"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:                "samvad-chat-test",
		ChatPath:               "/chat",
		RequestTimeout:         2 * time.Second,
		HistoryType:            "none",
		HistoryTTL:             time.Hour,
		HistoryCleanupInterval: time.Hour,
	}
}

// newFakeService answers "42" for "meaning", echoes everything else, and fails on "boom".
func newFakeService(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		switch req.Query {
		case "boom":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("server error"))
		case "meaning":
			_, _ = w.Write([]byte(`{"answer":"42"}`))
		case "silent":
			_, _ = w.Write([]byte(`{}`))
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"answer": "echo: " + req.Query})
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func runChat(t *testing.T, cfg *config.Config, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c, err := NewChat(context.Background(), cfg, nil, strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("NewChat: %v", err)
	}
	err = c.Run(context.Background())
	return out.String(), err
}

func TestChatRunEndToEnd(t *testing.T) {
	srv := newFakeService(t)
	cfg := testConfig(t)

	out, err := runChat(t, cfg, srv.URL+"/\nmeaning\nsilent\nboom\nhello there\nQUIT\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Enter your base URL: " +
		"Connected to " + srv.URL + "\n" +
		"Type 'exit' to quit.\n" +
		"> Answer: 42\n" +
		"> Answer: No answer\n" +
		"> Error 500 server error\n" +
		"> Answer: echo: hello there\n" +
		"> Goodbye\n"
	if out != want {
		t.Fatalf("unexpected transcript:\n%q\nwant:\n%q", out, want)
	}
}

func TestChatRunInvalidURL(t *testing.T) {
	out, err := runChat(t, testConfig(t), "localhost:8000\nmeaning\n")
	if !errors.Is(err, session.ErrInvalidBaseURL) {
		t.Fatalf("expected ErrInvalidBaseURL, got %v", err)
	}
	if !strings.Contains(out, "Invalid URL.") || strings.Contains(out, "Connected to") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestChatRunSurvivesConnectionFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	cfg := testConfig(t)
	cfg.BaseURL = url
	out, err := runChat(t, cfg, "first\nsecond\nexit\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Count(out, "Connection error: ") != 2 {
		t.Fatalf("expected two connection errors, got %q", out)
	}
	if !strings.HasSuffix(out, "> Goodbye\n") {
		t.Fatalf("expected loop to keep prompting until exit, got %q", out)
	}
}

type sinkRecorder struct {
	mu     sync.Mutex
	events []publishers.Event
}

func (s *sinkRecorder) handler(w http.ResponseWriter, r *http.Request) {
	var evt publishers.Event
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func TestChatRunRecordsHistoryAndPublishes(t *testing.T) {
	srv := newFakeService(t)
	sink := &sinkRecorder{}
	sinkSrv := httptest.NewServer(http.HandlerFunc(sink.handler))
	defer sinkSrv.Close()

	dir := t.TempDir()
	pubFile := filepath.Join(dir, "publishers.yaml")
	raw := fmt.Sprintf("publishers:\n  - id: hook\n    type: http\n    http:\n      url: %s\n", sinkSrv.URL)
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig(t)
	cfg.BaseURL = srv.URL
	cfg.HistoryType = "bbolt"
	cfg.HistoryPath = filepath.Join(dir, "history.db")
	cfg.PublishersFile = pubFile

	if _, err := runChat(t, cfg, "meaning\nboom\nexit\n"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	store, err := history.NewStore("bbolt", cfg.HistoryPath, history.Options{})
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer store.Close()
	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recorded exchanges, got %#v", recent)
	}
	if recent[0].Query != "meaning" || recent[0].Answer != "42" || recent[0].Outcome != domain.OutcomeAnswer {
		t.Fatalf("unexpected first exchange %#v", recent[0])
	}
	if recent[1].Outcome != domain.OutcomeStatus || recent[1].StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected second exchange %#v", recent[1])
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 2 || sink.events[0].Exchange.SessionID == "" {
		t.Fatalf("expected 2 published events with session id, got %#v", sink.events)
	}
}

func TestNewChatRejectsBadPublishersFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewChat(context.Background(), cfg, nil, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}
