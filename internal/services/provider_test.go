package services

import (
	"context"
	"errors"
	"route-watch-service/internal/domain"
	"sync"
)

// stubProvider answers by request kind: current (traffic-aware with the
// stored path), free-flow (traffic-free) and alternative (traffic-aware
// without waypoints).
type stubProvider struct {
	mu sync.Mutex

	current     float64
	freeFlow    float64
	alternative float64
	optimal     []domain.Coordinate

	currentErr     error
	freeFlowErr    error
	alternativeErr error

	calls map[string]int
}

func (s *stubProvider) GetRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	kind := "current"
	switch {
	case req.AvoidTraffic:
		kind = "free_flow"
	case len(req.Waypoints) == 0:
		kind = "alternative"
	}

	s.mu.Lock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[kind]++
	s.mu.Unlock()

	var minutes float64
	var err error
	switch kind {
	case "current":
		minutes, err = s.current, s.currentErr
	case "free_flow":
		minutes, err = s.freeFlow, s.freeFlowErr
	default:
		minutes, err = s.alternative, s.alternativeErr
	}
	if err != nil {
		return domain.RouteResponse{}, err
	}
	return domain.RouteResponse{
		TravelTimeMinutes: minutes,
		Waypoints:         []domain.Coordinate{req.Start, req.End},
	}, nil
}

func (s *stubProvider) GetOptimalRoute(_ context.Context, start, end domain.Coordinate) (domain.RouteResponse, error) {
	if s.optimal == nil {
		return domain.RouteResponse{}, errors.New("no optimal route")
	}
	return domain.RouteResponse{Waypoints: s.optimal}, nil
}

func (s *stubProvider) count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind]
}

func testRoute(name string, threshold float64) domain.RouteConfig {
	return domain.RouteConfig{
		Name:                name,
		Start:               domain.Coordinate{Lat: 37.7749, Lon: -122.4194},
		End:                 domain.Coordinate{Lat: 37.7831, Lon: -122.4031},
		FreeFlowRoute:       []domain.Coordinate{{Lat: 37.776, Lon: -122.41}},
		CongestionThreshold: threshold,
	}
}
