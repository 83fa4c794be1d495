package ports

import (
	"context"
	"route-watch-service/internal/domain"
)

// Contract for retrieving travel time and distance for a route.
type RouteProvider interface {
	// Return the route between req.Start and req.End through req.Waypoints in order.
	GetRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error)
	// Return the traffic-free route with no waypoint constraint.
	GetOptimalRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteResponse, error)
}
