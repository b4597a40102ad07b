package menu

import (
	"github.com/dineops/dineops/internal/menu/service"
	"go.uber.org/fx"
)

var Module = fx.Module("menu.service",
	fx.Provide(service.NewService),
)
