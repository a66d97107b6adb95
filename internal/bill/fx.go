package bill

import (
	"context"

	"github.com/techverse/billdesk/internal/bill/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bill.service",
	fx.Provide(service.NewService),
	fx.Invoke(loadLedger),
)

// loadLedger kicks off the initial fetch in the background. The store
// starts in its loading state and becomes ready whether or not the
// fetch succeeds; a failure is logged inside Load and surfaced through
// LoadErr.
func loadLedger(lc fx.Lifecycle, store *service.Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				_ = store.Load(context.WithoutCancel(ctx))
			}()
			return nil
		},
	})
}
