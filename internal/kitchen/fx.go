package kitchen

import (
	"github.com/dineops/dineops/internal/kitchen/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kitchen.service",
	fx.Provide(service.NewService),
)
