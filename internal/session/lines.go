package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

type lineResult struct {
	text string
	err  error
}

// LineReader yields input one line at a time. Reads happen on a background
// goroutine so a blocked read can be abandoned through the context.
type LineReader struct {
	ch chan lineResult
}

// NewLineReader starts reading r.
func NewLineReader(r io.Reader) *LineReader {
	l := &LineReader{ch: make(chan lineResult)}
	go l.pump(bufio.NewReader(r))
	return l
}

func (l *LineReader) pump(r *bufio.Reader) {
	defer close(l.ch)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			l.ch <- lineResult{text: strings.TrimRight(line, "\r\n")}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.ch <- lineResult{err: err}
			}
			return
		}
	}
}

// Next blocks for the next line. It returns io.EOF once input is exhausted,
// or the context error if ctx ends first.
func (l *LineReader) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.ch:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}
