// Package db provides the shared gorm connection.
package db

import (
	"context"
	"time"

	"github.com/dineops/dineops/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New opens the database connection and configures the pool.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			log.Info("database connected",
				zap.String("type", cfg.DBType),
				zap.String("host", cfg.DBHost),
				zap.String("name", cfg.DBName),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})

	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(New),
)
