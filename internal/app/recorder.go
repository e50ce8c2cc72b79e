package app

import (
	"context"

	"github.com/samvad-hq/samvad-chat/internal/domain"
	"github.com/samvad-hq/samvad-chat/internal/history"
	"github.com/samvad-hq/samvad-chat/internal/logger"
	"github.com/samvad-hq/samvad-chat/pkg/publishers"
)

// recorder persists exchanges and fans them out. Failures are logged and never reach the user.
type recorder struct {
	store  history.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

func newRecorder(store history.Store, fanout *publishers.Fanout, log logger.Logger) *recorder {
	return &recorder{store: store, fanout: fanout, log: log}
}

func (r *recorder) Record(ctx context.Context, ex domain.Exchange) {
	r.log.DebugObj("exchange completed", "exchange", ex)

	if r.store != nil {
		if err := r.store.Append(ex); err != nil {
			r.log.ErrorObj("history append failed", "error", err.Error())
		}
	}

	if r.fanout.Size() == 0 {
		return
	}
	delivered, err := r.fanout.Publish(ctx, publishers.NewEvent(ex))
	if err != nil {
		r.log.WarnObj("exchange publish failed", "publish_result", map[string]any{
			"delivered": delivered,
			"attempted": r.fanout.Size(),
			"error":     err.Error(),
		})
	}
}
