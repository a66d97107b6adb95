package observability

import (
	"github.com/techverse/billdesk/internal/observability/logger"
	"github.com/techverse/billdesk/internal/observability/tracing"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Invoke(tracing.NewProvider),
)
