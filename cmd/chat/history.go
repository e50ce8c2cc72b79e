package main

import (
	"fmt"
	"io"
	"time"

	"github.com/samvad-hq/samvad-chat/internal/chat"
	"github.com/samvad-hq/samvad-chat/internal/config"
	"github.com/samvad-hq/samvad-chat/internal/domain"
	"github.com/samvad-hq/samvad-chat/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recently recorded exchanges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := history.NewStore(cfg.HistoryType, cfg.HistoryPath, history.Options{
				RecordTTL:       cfg.HistoryTTL,
				CleanupInterval: cfg.HistoryCleanupInterval,
			})
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			recent, err := store.Recent(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			printHistory(cmd.OutOrStdout(), recent)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of exchanges to show")
	return cmd
}

func printHistory(w io.Writer, exchanges []domain.Exchange) {
	if len(exchanges) == 0 {
		fmt.Fprintln(w, "No recorded exchanges.")
		return
	}
	for _, ex := range exchanges {
		fmt.Fprintf(w, "%s > %s\n", ex.StartedAt.Format(time.RFC3339), ex.Query)
		fmt.Fprintf(w, "  %s\n", renderExchange(ex))
	}
}

func renderExchange(ex domain.Exchange) string {
	res := chat.Result{
		Answer:     ex.Answer,
		StatusCode: ex.StatusCode,
		Body:       ex.Body,
	}
	switch ex.Outcome {
	case domain.OutcomeAnswer:
		res.Kind = chat.KindAnswer
	case domain.OutcomeStatus:
		res.Kind = chat.KindStatus
	default:
		res.Kind = chat.KindTransport
		res.Err = fmt.Errorf("%s", ex.Error)
	}
	return res.Render()
}
