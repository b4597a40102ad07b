// Package observability bundles the logger and metrics wiring.
package observability

import (
	"github.com/dineops/dineops/internal/observability/logger"
	"github.com/dineops/dineops/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	metrics.Module,
)
