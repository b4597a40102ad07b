package table

import (
	"github.com/dineops/dineops/internal/table/service"
	"go.uber.org/fx"
)

var Module = fx.Module("table.service",
	fx.Provide(service.NewService),
)
