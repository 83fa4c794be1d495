package services

import (
	"context"
	"fmt"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/platform/obs"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCheckInterval = 300 * time.Second

	defaultRecoveryPause = 60 * time.Second
)

// AlertFunc receives every result that is congested with a faster alternative.
type AlertFunc func(ctx context.Context, result *domain.CongestionResult) error

// Monitor re-evaluates a fixed set of routes on an interval.
type Monitor struct {
	engine *Engine
	logger logrus.FieldLogger

	// OnCycle, when set, receives every successful result of a cycle in route order.
	OnCycle func(ctx context.Context, results []*domain.CongestionResult)

	// Concurrency, when positive, caps how many routes are evaluated at once.
	// Zero evaluates every route of a cycle together.
	Concurrency int

	// RecoveryPause is the wait after a cycle fails unexpectedly.
	RecoveryPause time.Duration
}

func NewMonitor(engine *Engine, logger logrus.FieldLogger) *Monitor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Monitor{
		engine:        engine,
		logger:        logger,
		RecoveryPause: defaultRecoveryPause,
	}
}

// Run evaluates routes every interval until ctx is cancelled, then returns
// ctx.Err(). Route failures and callback failures are logged and never stop
// the loop.
func (m *Monitor) Run(
	ctx context.Context,
	routes []domain.RouteConfig,
	interval time.Duration,
	callback AlertFunc,
) error {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	for {
		pause := interval
		if err := m.safeCycle(ctx, routes, callback); err != nil {
			m.logger.WithError(err).Error("monitoring cycle failed")
			pause = m.RecoveryPause
		}

		if err := sleep(ctx, pause); err != nil {
			return err
		}
	}
}

// RunOnce performs a single cycle and returns its results.
func (m *Monitor) RunOnce(
	ctx context.Context,
	routes []domain.RouteConfig,
	callback AlertFunc,
) ([]*domain.CongestionResult, error) {
	var results []*domain.CongestionResult

	err := m.recoverCycle(func() {
		results = m.cycle(ctx, routes, callback)
	})

	return results, err
}

func (m *Monitor) safeCycle(ctx context.Context, routes []domain.RouteConfig, callback AlertFunc) error {
	return m.recoverCycle(func() {
		m.cycle(ctx, routes, callback)
	})
}

func (m *Monitor) recoverCycle(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor cycle panic: %v", r)
		}
	}()
	fn()
	return nil
}

func (m *Monitor) cycle(
	ctx context.Context,
	routes []domain.RouteConfig,
	callback AlertFunc,
) []*domain.CongestionResult {
	cycleID := uuid.NewString()
	ctx = obs.WithRequestID(ctx, cycleID)
	log := m.logger.WithField("req_id", cycleID)

	log.WithField("routes", len(routes)).Debug("monitoring cycle started")

	slots := make([]*domain.CongestionResult, len(routes))

	var g errgroup.Group
	if m.Concurrency > 0 {
		g.SetLimit(m.Concurrency)
	}

	for i, rc := range routes {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					log.WithField("route", rc.Name).Errorf("route check panicked: %v", p)
				}
			}()

			result, err := m.engine.Evaluate(ctx, rc)
			if err != nil {
				if ctx.Err() == nil {
					log.WithField("route", rc.Name).WithError(err).Error("route check failed")
				}
				return nil
			}
			slots[i] = result
			return nil
		})
	}
	_ = g.Wait()

	results := make([]*domain.CongestionResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}

	if ctx.Err() != nil {
		return results
	}

	for _, r := range results {
		if !r.Actionable() || callback == nil {
			continue
		}
		m.invoke(ctx, log, callback, r)
	}

	if m.OnCycle != nil {
		m.OnCycle(ctx, results)
	}

	log.WithField("results", len(results)).Debug("monitoring cycle finished")

	return results
}

func (m *Monitor) invoke(
	ctx context.Context,
	log logrus.FieldLogger,
	callback AlertFunc,
	r *domain.CongestionResult,
) {
	defer func() {
		if p := recover(); p != nil {
			log.WithField("route", r.RouteName).Errorf("alert callback panicked: %v", p)
		}
	}()

	if err := callback(ctx, r); err != nil {
		log.WithField("route", r.RouteName).WithError(err).Error("alert callback failed")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
