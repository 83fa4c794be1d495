package routing

import (
	"context"
	"math"
	"math/rand"
	"route-watch-service/internal/domain"
	"sync"
	"time"
)

const (
	kmPerDegree        = 111.0
	minimumTripMinutes = 30.0
	trafficMultiplier  = 1.5
	jitterDegrees      = 0.001
)

// SyntheticProvider produces deterministic-shape routes without network access.
// It backs the "mock" provider and the fallback when no provider is configured.
type SyntheticProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticProvider returns a provider jittering with rng. A nil rng is
// seeded from the current time.
func NewSyntheticProvider(rng *rand.Rand) *SyntheticProvider {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SyntheticProvider{rng: rng}
}

// BaseEstimate returns the straight-line distance in km and the traffic-free
// travel time in minutes between two points.
func BaseEstimate(start, end domain.Coordinate) (distanceKm, minutes float64) {
	dLat := end.Lat - start.Lat
	dLon := end.Lon - start.Lon
	distanceKm = math.Sqrt(dLat*dLat+dLon*dLon) * kmPerDegree
	minutes = math.Max(minimumTripMinutes, distanceKm*2)
	return distanceKm, minutes
}

func (s *SyntheticProvider) GetRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.RouteResponse{}, err
	}

	distance, minutes := BaseEstimate(req.Start, req.End)
	if !req.AvoidTraffic {
		minutes *= trafficMultiplier
	}

	waypoints := make([]domain.Coordinate, 0, len(req.Waypoints)+5)
	waypoints = append(waypoints, req.Start)
	waypoints = append(waypoints, req.Waypoints...)

	if req.AvoidTraffic && len(req.Waypoints) == 0 && distance > 1 {
		waypoints = append(waypoints, s.detour(req.Start, req.End, distance)...)
	}
	waypoints = append(waypoints, req.End)

	return domain.RouteResponse{
		TravelTimeMinutes: minutes,
		DistanceKm:        distance,
		Waypoints:         waypoints,
	}, nil
}

func (s *SyntheticProvider) GetOptimalRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteResponse, error) {
	return s.GetRoute(ctx, domain.RouteRequest{Start: start, End: end, AvoidTraffic: true})
}

// detour places n jittered points evenly along the start-end line.
func (s *SyntheticProvider) detour(start, end domain.Coordinate, distance float64) []domain.Coordinate {
	n := min(3, max(1, int(distance/2)))

	s.mu.Lock()
	defer s.mu.Unlock()

	points := make([]domain.Coordinate, 0, n)
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n+1)
		points = append(points, domain.Coordinate{
			Lat: start.Lat + f*(end.Lat-start.Lat) + s.jitter(),
			Lon: start.Lon + f*(end.Lon-start.Lon) + s.jitter(),
		})
	}
	return points
}

func (s *SyntheticProvider) jitter() float64 {
	return (s.rng.Float64()*2 - 1) * jitterDegrees
}
