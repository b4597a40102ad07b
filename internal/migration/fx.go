package migration

import (
	billingdomain "github.com/dineops/dineops/internal/billing/domain"
	"github.com/dineops/dineops/internal/config"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	"github.com/dineops/dineops/internal/seed"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrations target postgres; sqlite and mysql
		// deployments get gorm's own schema management instead.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := conn.AutoMigrate(
			&menudomain.Category{},
			&menudomain.Item{},
			&tabledomain.Table{},
			&tabledomain.Session{},
			&orderdomain.Order{},
			&orderdomain.Line{},
			&billingdomain.Bill{},
			&billingdomain.BillItem{},
			&billingdomain.BillPayment{},
		); err != nil {
			return err
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
