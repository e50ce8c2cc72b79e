package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-chat/internal/chat"
	"github.com/samvad-hq/samvad-chat/internal/domain"
)

const (
	promptText   = "> "
	farewellText = "Goodbye"
)

// Asker performs one query round trip.
type Asker interface {
	Ask(ctx context.Context, query string) chat.Result
}

// Recorder receives every completed exchange.
type Recorder interface {
	Record(ctx context.Context, ex domain.Exchange)
}

// Loop is the interactive read-eval-print loop for one Session.
type Loop struct {
	sess     *Session
	asker    Asker
	out      io.Writer
	recorder Recorder
	now      func() time.Time
}

// NewLoop builds a loop. recorder may be nil.
func NewLoop(sess *Session, asker Asker, out io.Writer, recorder Recorder) *Loop {
	return &Loop{
		sess:     sess,
		asker:    asker,
		out:      out,
		recorder: recorder,
		now:      time.Now,
	}
}

// IsExit reports whether input asks to end the session.
func IsExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Run prompts and answers until the user exits, input ends, or ctx is cancelled.
// Per-query failures are printed and never end the loop.
func (l *Loop) Run(ctx context.Context, lines *LineReader) error {
	if l == nil || l.sess == nil || l.asker == nil {
		return fmt.Errorf("loop is not initialized")
	}

	fmt.Fprintln(l.out, "Connected to", l.sess.BaseURL())
	fmt.Fprintln(l.out, "Type 'exit' to quit.")

	for seq := 1; ; seq++ {
		fmt.Fprint(l.out, promptText)
		query, err := lines.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				fmt.Fprintln(l.out, farewellText)
				return nil
			}
			return fmt.Errorf("read query: %w", err)
		}
		if IsExit(query) {
			fmt.Fprintln(l.out, farewellText)
			return nil
		}

		start := l.now()
		res := l.asker.Ask(ctx, query)
		fmt.Fprintln(l.out, res.Render())

		if l.recorder != nil {
			ex := domain.Exchange{
				SessionID: l.sess.ID(),
				Sequence:  seq,
				Query:     query,
				StartedAt: start.UTC(),
				ElapsedMS: l.now().Sub(start).Milliseconds(),
			}
			res.Fill(&ex)
			l.recorder.Record(ctx, ex)
		}
	}
}
