package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/automator/internal/config"
	"github.com/aretw0/automator/pkg/adapters/memory"
	"github.com/aretw0/automator/pkg/adapters/redis"
	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/observability"
	"github.com/aretw0/automator/pkg/ports"
	"github.com/aretw0/automator/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App holds the components shared by every front end.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Events   *memory.Fanout
	Sessions *session.Manager

	redis *redis.Publisher
}

// NewApp wires sessions, metrics and event publishers from cfg. Extra
// publishers (such as the HTTP stream manager) are registered by name before
// the first session opens.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, publishers map[string]ports.EventPublisher) (*App, error) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	events := memory.NewFanout(metrics)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics,
		Events:   events,
	}

	for name, p := range publishers {
		events.Add(name, p)
	}

	if cfg.Redis.Enabled {
		pub := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.ChannelPrefix))
		if err := pub.Ping(ctx); err != nil {
			pub.Close()
			return nil, NewExitError(ExitUnavailable, fmt.Errorf("redis event publisher: %w", err))
		}
		app.redis = pub
		events.Add("redis", pub)
		logger.Info("publishing change events to redis",
			zap.String("address", cfg.Redis.Address),
			zap.String("channel_prefix", cfg.Redis.ChannelPrefix))
	}

	opts, err := cfg.StoreOptions()
	if err != nil {
		app.Close()
		return nil, NewExitError(ExitConfig, err)
	}
	opts = append(opts,
		builder.WithLogger(logger),
		builder.WithMetrics(metrics),
		builder.WithPublisher(events),
	)

	app.Sessions = session.NewManager(session.NewFactory(opts...),
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	)
	return app, nil
}

// Close releases external connections.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
