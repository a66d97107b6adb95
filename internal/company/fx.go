package company

import (
	"github.com/techverse/billdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("company.store",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *Store {
		return NewStore(cfg.Company.DataFile, log)
	}),
)
