package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/techverse/billdesk/internal/events"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config Config `optional:"true"`
}

// Worker drains the bill_events outbox, marking rows published once
// they have been handed to downstream consumers. The only consumer in
// this deployment is the structured log stream.
type Worker struct {
	db  *gorm.DB
	log *zap.Logger
	cfg Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:  p.DB,
		log: p.Log.Named("events.dispatch"),
		cfg: p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("outbox dispatch run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce drains at most one batch and reports how many events were
// dispatched.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	if w.db == nil {
		return 0, errors.New("dispatch_worker_unavailable")
	}

	processed := 0
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []events.BillEvent
		if err := tx.
			Where("published = ?", false).
			Order("created_at asc").
			Limit(w.cfg.BatchSize).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, row := range rows {
			if err := tx.Model(&events.BillEvent{}).
				Where("id = ?", row.ID).
				Updates(map[string]any{"published": true, "published_at": now}).Error; err != nil {
				return err
			}
			w.log.Info("billing event dispatched",
				zap.String("event_id", row.ID.String()),
				zap.String("event_type", row.EventType),
			)
			processed++
		}
		return nil
	})
	return processed, err
}
