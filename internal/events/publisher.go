package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dineops/dineops/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// broadcaster feeds the in-process hub and, when configured, a redis
// channel for external displays. Redis failures are logged and dropped.
type broadcaster struct {
	hub     *Hub
	log     *zap.Logger
	rdb     *redis.Client
	channel string
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
	Hub *Hub
}

func NewPublisher(lc fx.Lifecycle, p Params) Publisher {
	b := &broadcaster{
		hub:     p.Hub,
		log:     p.Log.Named("events"),
		channel: p.Cfg.RedisChannel,
	}

	if p.Cfg.RedisAddr != "" {
		b.rdb = redis.NewClient(&redis.Options{Addr: p.Cfg.RedisAddr})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return b.rdb.Close()
			},
		})
	}

	return b
}

func (b *broadcaster) Publish(eventType string, payload map[string]any) {
	b.hub.Publish(eventType, payload)

	if b.rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		body, err := json.Marshal(Event{
			Type:       eventType,
			OccurredAt: time.Now().UTC(),
			Payload:    payload,
		})
		if err != nil {
			b.log.Warn("marshal event", zap.String("type", eventType), zap.Error(err))
			return
		}
		if err := b.rdb.Publish(ctx, b.channel, body).Err(); err != nil {
			b.log.Warn("redis publish failed",
				zap.String("type", eventType),
				zap.Error(err),
			)
		}
	}()
}

var Module = fx.Module("events",
	fx.Provide(NewHub),
	fx.Provide(NewPublisher),
)
