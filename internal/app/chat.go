package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-chat/internal/chat"
	"github.com/samvad-hq/samvad-chat/internal/config"
	"github.com/samvad-hq/samvad-chat/internal/history"
	"github.com/samvad-hq/samvad-chat/internal/logger"
	"github.com/samvad-hq/samvad-chat/internal/session"
	"github.com/samvad-hq/samvad-chat/pkg/httpclient"
	"github.com/samvad-hq/samvad-chat/pkg/publishers"
)

// Chat represents the interactive client runtime. It owns the transport, the
// optional history store and the publisher fanout for one run.
type Chat struct {
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	http   httpclient.Client
	store  history.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// Option customizes a Chat.
type Option func(*Chat)

// WithHTTPClient replaces the resty-backed transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(ch *Chat) {
		if c != nil {
			ch.http = c
		}
	}
}

// NewChat builds a chat runtime from config.
func NewChat(ctx context.Context, cfg *config.Config, log logger.Logger, in io.Reader, out io.Writer, opts ...Option) (*Chat, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Chat{cfg: cfg, in: in, out: out, log: log}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		var restyOpts []httpclient.Option
		if zl, ok := log.(*logger.ZapLogger); ok {
			restyOpts = append(restyOpts, httpclient.WithLogger(zl.Sugar()))
		}
		restyOpts = append(restyOpts, httpclient.WithUserAgent(cfg.AppName))
		c.http = httpclient.NewRestyClient(cfg.RequestTimeout, restyOpts...)
	}

	store, err := history.NewStore(cfg.HistoryType, cfg.HistoryPath, history.Options{
		RecordTTL:       cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	c.store = store
	log.InfoObj("history initialized", "history_config", map[string]any{
		"type":        cfg.HistoryType,
		"path":        cfg.HistoryPath,
		"ttl_seconds": int(cfg.HistoryTTL.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	c.fanout = fanout

	return c, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run resolves the base URL and runs the loop until the user exits.
// It returns session.ErrInvalidBaseURL when the URL is rejected.
func (c *Chat) Run(ctx context.Context) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("chat is not initialized")
	}
	defer c.close()

	lines := session.NewLineReader(c.in)
	sess, err := session.Start(ctx, lines, c.out, c.cfg.BaseURL)
	if err != nil {
		if errors.Is(err, session.ErrInvalidBaseURL) {
			c.log.InfoObj("base url rejected", "error", err.Error())
		}
		return err
	}

	client := chat.NewClient(c.http, sess.Endpoint(c.cfg.ChatPath), c.log)
	c.log.InfoObj("chat session starting", "session", map[string]any{
		"id":         sess.ID(),
		"endpoint":   client.Endpoint(),
		"publishers": c.fanout.Size(),
	})

	loop := session.NewLoop(sess, client, c.out, newRecorder(c.store, c.fanout, c.log))
	if err := loop.Run(ctx, lines); err != nil {
		return fmt.Errorf("chat loop: %w", err)
	}
	c.log.InfoObj("chat session ended", "session_id", sess.ID())
	return nil
}

func (c *Chat) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.log.ErrorObj("history close failed", "error", err)
		}
	}
	if err := c.fanout.Close(); err != nil {
		c.log.ErrorObj("publishers close failed", "error", err)
	}
}
