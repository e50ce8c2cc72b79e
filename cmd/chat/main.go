package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-chat/internal/app"
	"github.com/samvad-hq/samvad-chat/internal/config"
	"github.com/samvad-hq/samvad-chat/internal/logger"
	"github.com/samvad-hq/samvad-chat/internal/session"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The loop already told the user the URL was invalid.
		if !errors.Is(err, session.ErrInvalidBaseURL) {
			fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chat",
		Short:         "Interactive client for a remote /chat endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd)
		},
	}
	config.RegisterFlags(cmd.PersistentFlags())
	cmd.AddCommand(newHistoryCmd())
	return cmd
}

func runChat(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("chat starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.NewChat(ctx, cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		logger.ErrorObj("failed to initialize chat", "error", err)
		return err
	}

	if err := c.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
