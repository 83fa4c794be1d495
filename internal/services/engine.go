package services

import (
	"context"
	"fmt"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/platform/obs"
	"route-watch-service/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// An alternative must be at least 15% faster than the current route to be worth reporting.
const alternativeSavingsFactor = 0.85

// Engine decides whether a route is congested and whether a faster
// traffic-free alternative exists. It is safe for concurrent use.
type Engine struct {
	provider ports.RouteProvider
	logger   logrus.FieldLogger
	now      func() time.Time
}

type EngineOption func(*Engine)

// WithClock overrides the clock used to timestamp results.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(provider ports.RouteProvider, logger logrus.FieldLogger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &Engine{provider: provider, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Provider returns the engine's routing provider.
func (e *Engine) Provider() ports.RouteProvider {
	return e.provider
}

// Evaluate checks one route. The current and free-flow lookups run
// concurrently along the route's stored free-flow path; a failure of either
// fails the evaluation. The alternative lookup only runs for congested routes
// and its failure is reported as "no alternative".
func (e *Engine) Evaluate(ctx context.Context, rc domain.RouteConfig) (_ *domain.CongestionResult, err error) {
	defer obs.Time(ctx, e.logger, "engine.Evaluate")(&err)

	threshold := rc.CongestionThreshold
	if threshold <= 0 {
		threshold = domain.DefaultCongestionThreshold
	}

	var current, freeFlow domain.RouteResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := e.route(gctx, domain.RouteRequest{
			Start:     rc.Start,
			End:       rc.End,
			Waypoints: rc.FreeFlowRoute,
		})
		if err != nil {
			return fmt.Errorf("evaluate %q: current travel time: %w", rc.Name, err)
		}
		current = resp
		return nil
	})
	g.Go(func() error {
		resp, err := e.route(gctx, domain.RouteRequest{
			Start:        rc.Start,
			End:          rc.End,
			Waypoints:    rc.FreeFlowRoute,
			AvoidTraffic: true,
		})
		if err != nil {
			return fmt.Errorf("evaluate %q: free-flow travel time: %w", rc.Name, err)
		}
		freeFlow = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ratio := 1.0
	if freeFlow.TravelTimeMinutes > 0 {
		ratio = current.TravelTimeMinutes / freeFlow.TravelTimeMinutes
	}

	result := &domain.CongestionResult{
		RouteName:          rc.Name,
		IsCongested:        ratio > threshold,
		CurrentTravelTime:  current.TravelTimeMinutes,
		FreeFlowTravelTime: freeFlow.TravelTimeMinutes,
		CongestionRatio:    ratio,
	}

	if result.IsCongested {
		alt, err := e.route(ctx, domain.RouteRequest{Start: rc.Start, End: rc.End})
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"req_id": obs.RequestID(ctx),
				"route":  rc.Name,
			}).WithError(err).Warn("alternative route lookup failed")
		} else {
			altTime := alt.TravelTimeMinutes
			result.AlternativeTravelTime = &altTime
			result.AlternativeAvailable = altTime < current.TravelTimeMinutes*alternativeSavingsFactor
		}
	}

	result.Timestamp = e.now()

	return result, nil
}

// route calls the provider and reports a panic inside it as an error.
func (e *Engine) route(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("route provider panic: %v", p)
		}
	}()
	return e.provider.GetRoute(ctx, req)
}

// ResolveOptimalWaypoints returns the interior points of the provider's
// traffic-free route between start and end, suitable for storing as a
// route's free-flow path.
func (e *Engine) ResolveOptimalWaypoints(ctx context.Context, start, end domain.Coordinate) ([]domain.Coordinate, error) {
	resp, err := e.provider.GetOptimalRoute(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("resolve optimal waypoints: %w", err)
	}

	if len(resp.Waypoints) <= 2 {
		return []domain.Coordinate{}, nil
	}

	interior := make([]domain.Coordinate, len(resp.Waypoints)-2)
	copy(interior, resp.Waypoints[1:len(resp.Waypoints)-1])
	return interior, nil
}
