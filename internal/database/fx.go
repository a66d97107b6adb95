package database

import (
	"github.com/techverse/billdesk/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("database",
	fx.Provide(func(cfg config.Config) (*gorm.DB, error) {
		return Open(cfg.Database)
	}),
	fx.Invoke(AutoMigrate),
)
