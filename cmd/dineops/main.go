package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/billing"
	"github.com/dineops/dineops/internal/config"
	"github.com/dineops/dineops/internal/events"
	"github.com/dineops/dineops/internal/kitchen"
	"github.com/dineops/dineops/internal/menu"
	"github.com/dineops/dineops/internal/migration"
	"github.com/dineops/dineops/internal/observability"
	"github.com/dineops/dineops/internal/order"
	"github.com/dineops/dineops/internal/receipt"
	"github.com/dineops/dineops/internal/server"
	"github.com/dineops/dineops/internal/table"
	"github.com/dineops/dineops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		events.Module,

		menu.Module,
		table.Module,
		order.Module,
		kitchen.Module,
		billing.Module,
		receipt.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
