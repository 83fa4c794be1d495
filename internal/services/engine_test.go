package services

import (
	"context"
	"errors"
	"route-watch-service/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNotCongested(t *testing.T) {
	p := &stubProvider{current: 50, freeFlow: 40, alternative: 10}
	e := NewEngine(p, nil)

	r, err := e.Evaluate(context.Background(), testRoute("commute", 1.5))
	require.NoError(t, err)

	assert.InDelta(t, 1.25, r.CongestionRatio, 1e-9)
	assert.False(t, r.IsCongested)
	assert.False(t, r.AlternativeAvailable)
	assert.Nil(t, r.AlternativeTravelTime)
	assert.Equal(t, 0, p.count("alternative"))
}

func TestEvaluateCongestedWithAlternative(t *testing.T) {
	p := &stubProvider{current: 50, freeFlow: 30, alternative: 40}
	e := NewEngine(p, nil)

	r, err := e.Evaluate(context.Background(), testRoute("commute", 1.2))
	require.NoError(t, err)

	assert.InDelta(t, 50.0/30.0, r.CongestionRatio, 1e-9)
	assert.True(t, r.IsCongested)
	assert.True(t, r.AlternativeAvailable)
	require.NotNil(t, r.AlternativeTravelTime)
	assert.Equal(t, 40.0, *r.AlternativeTravelTime)
	assert.True(t, r.Actionable())
	assert.Equal(t, "commute", r.RouteName)
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		freeFlow  float64
		threshold float64
		congested bool
	}{
		{name: "ratio equal to threshold", current: 45, freeFlow: 30, threshold: 1.5, congested: false},
		{name: "ratio just above threshold", current: 45.3, freeFlow: 30, threshold: 1.5, congested: true},
		{name: "zero free-flow", current: 45, freeFlow: 0, threshold: 1.5, congested: false},
		{name: "zero free-flow below one", current: 45, freeFlow: 0, threshold: 0.5, congested: true},
		{name: "default threshold", current: 46, freeFlow: 30, threshold: 0, congested: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{current: tt.current, freeFlow: tt.freeFlow, alternative: 100}
			r, err := NewEngine(p, nil).Evaluate(context.Background(), testRoute("r", tt.threshold))
			require.NoError(t, err)
			assert.Equal(t, tt.congested, r.IsCongested)
			if tt.freeFlow == 0 {
				assert.Equal(t, 1.0, r.CongestionRatio)
			}
		})
	}
}

func TestEvaluateAlternativeMustSaveFifteenPercent(t *testing.T) {
	tests := []struct {
		alternative float64
		available   bool
	}{
		{alternative: 42.5, available: false},
		{alternative: 42.4, available: true},
		{alternative: 60, available: false},
	}

	for _, tt := range tests {
		p := &stubProvider{current: 50, freeFlow: 20, alternative: tt.alternative}
		r, err := NewEngine(p, nil).Evaluate(context.Background(), testRoute("r", 1.5))
		require.NoError(t, err)

		assert.Equal(t, tt.available, r.AlternativeAvailable, "alternative %v", tt.alternative)
		require.NotNil(t, r.AlternativeTravelTime)
	}
}

func TestEvaluateAlternativeFailureIsSwallowed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := &stubProvider{current: 50, freeFlow: 20, alternativeErr: errors.New("boom")}

	r, err := NewEngine(p, logger).Evaluate(context.Background(), testRoute("r", 1.5))
	require.NoError(t, err)

	assert.True(t, r.IsCongested)
	assert.False(t, r.AlternativeAvailable)
	assert.Nil(t, r.AlternativeTravelTime)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestEvaluateMandatoryLookupFailure(t *testing.T) {
	perr := &domain.ProviderError{Provider: "stub", Op: "route", Err: domain.ErrNoRoute}

	for _, p := range []*stubProvider{
		{currentErr: perr, freeFlow: 10},
		{current: 10, freeFlowErr: perr},
	} {
		r, err := NewEngine(p, nil).Evaluate(context.Background(), testRoute("r", 1.5))
		assert.Nil(t, r)

		var target *domain.ProviderError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 0, p.count("alternative"))
	}
}

// barrierProvider blocks every lookup until all lookups added to wg are in flight.
type barrierProvider struct {
	wg sync.WaitGroup
}

func (b *barrierProvider) GetRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	b.wg.Done()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return domain.RouteResponse{TravelTimeMinutes: 10}, nil
	case <-ctx.Done():
		return domain.RouteResponse{}, ctx.Err()
	}
}

func (b *barrierProvider) GetOptimalRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteResponse, error) {
	return b.GetRoute(ctx, domain.RouteRequest{Start: start, End: end, AvoidTraffic: true})
}

func TestEvaluateRunsLookupsConcurrently(t *testing.T) {
	b := &barrierProvider{}
	b.wg.Add(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := NewEngine(b, nil).Evaluate(ctx, testRoute("r", 1.5))
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.CongestionRatio)
}

func TestEvaluateTimestampsFromClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	e := NewEngine(&stubProvider{current: 10, freeFlow: 10}, nil, WithClock(clock))

	first, err := e.Evaluate(context.Background(), testRoute("r", 1.5))
	require.NoError(t, err)
	second, err := e.Evaluate(context.Background(), testRoute("r", 1.5))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 1, 0, time.UTC), first.Timestamp)
	assert.False(t, second.Timestamp.Before(first.Timestamp))
}

func TestResolveOptimalWaypoints(t *testing.T) {
	pts := []domain.Coordinate{{Lat: 1}, {Lat: 2}, {Lat: 3}, {Lat: 4}, {Lat: 5}}

	e := NewEngine(&stubProvider{optimal: pts}, nil)
	got, err := e.ResolveOptimalWaypoints(context.Background(), pts[0], pts[4])
	require.NoError(t, err)
	assert.Equal(t, pts[1:4], got)

	e = NewEngine(&stubProvider{optimal: pts[:2]}, nil)
	got, err = e.ResolveOptimalWaypoints(context.Background(), pts[0], pts[1])
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	e = NewEngine(&stubProvider{}, nil)
	_, err = e.ResolveOptimalWaypoints(context.Background(), pts[0], pts[1])
	assert.Error(t, err)
}

func TestFormatAlert(t *testing.T) {
	alt := 40.0
	msg := FormatAlert(&domain.CongestionResult{
		RouteName:             "Home to Work",
		CurrentTravelTime:     50.04,
		AlternativeTravelTime: &alt,
	})
	assert.Equal(t, "Traffic Alert: Home to Work is congested! Current: 50.0min, Alternative: 40.0min", msg)
}

func TestFormatSummary(t *testing.T) {
	alt := 40.0
	r := &domain.CongestionResult{
		RouteName:          "Commute",
		CurrentTravelTime:  45,
		FreeFlowTravelTime: 30,
		CongestionRatio:    1.5,
	}
	assert.Equal(t, "Commute: clear (current 45.0min, free-flow 30.0min, ratio 1.50)", FormatSummary(r))

	r.IsCongested = true
	r.AlternativeTravelTime = &alt
	r.AlternativeAvailable = true
	assert.Equal(t,
		"Commute: congested (current 45.0min, free-flow 30.0min, ratio 1.50), alternative 40.0min faster",
		FormatSummary(r))
}
