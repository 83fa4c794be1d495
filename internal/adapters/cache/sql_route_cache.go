package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-watch-service/internal/domain"
	"strings"
	"time"
)

// SQLRouteCache is a Postgres-backed cache of traffic-free route responses.
type SQLRouteCache struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db, now: time.Now}
}

// Fetch a cached response. Expired rows count as a miss.
func (s *SQLRouteCache) Get(ctx context.Context, key string) (domain.RouteResponse, bool, error) {
	if s.DB == nil {
		return domain.RouteResponse{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteResponse{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT travel_time_minutes, distance_km, waypoints, geometry, expires_at
    FROM route_cache
    WHERE cache_key = $1;
	`

	var r routeRow
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&r.travelTime, &r.distance, &r.waypoints, &r.geometry, &r.expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteResponse{}, false, nil
	}
	if err != nil {
		return domain.RouteResponse{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if r.expired(s.now()) {
		return domain.RouteResponse{}, false, nil
	}

	resp, err := r.response()
	if err != nil {
		return domain.RouteResponse{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	return resp, true, nil
}

// Store a response, replacing any previous entry for key.
func (s *SQLRouteCache) Put(ctx context.Context, key string, resp domain.RouteResponse, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	r, err := toRow(resp, ttl, s.now())
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT INTO route_cache (cache_key, travel_time_minutes, distance_km, waypoints, geometry, expires_at)
    VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (cache_key) DO UPDATE
	SET travel_time_minutes = EXCLUDED.travel_time_minutes,
		distance_km = EXCLUDED.distance_km,
		waypoints = EXCLUDED.waypoints,
		geometry = EXCLUDED.geometry,
		expires_at = EXCLUDED.expires_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, key, r.travelTime, r.distance, r.waypoints, r.geometry, r.expiresAt); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
