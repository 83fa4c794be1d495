package ports

import (
	"context"
	"route-watch-service/internal/domain"
	"time"
)

// Port: persistent store for traffic-free route responses keyed by a canonical request key.
type RouteCache interface {
	// Get returns the cached response and true on a hit.
	Get(ctx context.Context, key string) (domain.RouteResponse, bool, error)
	// Put stores a response for at most ttl. A zero ttl never expires.
	Put(ctx context.Context, key string, resp domain.RouteResponse, ttl time.Duration) error
}
