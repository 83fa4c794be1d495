package main

import (
	"context"
	"errors"
	"fmt"
	"route-watch-service/internal/adapters/cache"
	"route-watch-service/internal/adapters/notify"
	"route-watch-service/internal/adapters/routing"
	"route-watch-service/internal/config"
	"route-watch-service/internal/platform/db"
	"route-watch-service/internal/platform/logging"
	"route-watch-service/internal/ports"
	"route-watch-service/internal/services"

	"github.com/sirupsen/logrus"
)

// app holds the adapters wired from one configuration file.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	engine   *services.Engine
	notifier ports.Notifier
	closers  []func() error
}

func newApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	settings, err := cfg.ProviderSettings()
	if err != nil {
		a.Close()
		return nil, err
	}
	provider, err := routing.NewProvider(settings, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Cache.Enabled() {
		rc, closeCache, err := openCache(ctx, cfg.Cache)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, closeCache)
		provider = routing.NewCachingProvider(provider, rc, cfg.Cache.TTL, logger)
		logger.WithField("backend", cfg.Cache.Backend).Debug("free-flow cache enabled")
	}

	a.engine = services.NewEngine(provider, logger)

	if err := a.buildNotifier(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) buildNotifier(ctx context.Context) error {
	var targets notify.Multi

	if a.cfg.Notification != nil {
		targets = append(targets, notify.NewCommandNotifier(*a.cfg.Notification))
	}
	if a.cfg.Kafka != nil {
		k, err := notify.NewKafkaNotifier(*a.cfg.Kafka)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, k.Close)
		targets = append(targets, k)
	}
	if a.cfg.SES != nil {
		s, err := notify.NewSESNotifier(ctx, *a.cfg.SES)
		if err != nil {
			return fmt.Errorf("ses: %w", err)
		}
		targets = append(targets, s)
	}

	switch len(targets) {
	case 0:
	case 1:
		a.notifier = targets[0]
	default:
		a.notifier = targets
	}
	return nil
}

// usingSyntheticRoutes reports whether no real routing provider is configured.
func (a *app) usingSyntheticRoutes() bool {
	p := a.cfg.ProviderName()
	return p == "" || p == routing.ProviderSynthetic
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}

func openCache(ctx context.Context, cfg config.CacheConfig) (ports.RouteCache, func() error, error) {
	switch cfg.Backend {
	case config.CacheRedis:
		c, err := cache.NewRedisRouteCacheFromURL(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis cache: %w", err)
		}
		return c, c.Close, nil

	case config.CachePostgres:
		conn, err := db.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSQLRouteCache(conn), conn.Close, nil

	case config.CacheSqlite:
		conn, err := db.OpenSqlite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSqliteRouteCache(conn), conn.Close, nil

	default:
		return nil, nil, errors.New("no cache backend configured")
	}
}
