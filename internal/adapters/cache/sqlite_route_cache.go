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

// SQLite backed cache of traffic-free route responses.
// Keys are expected to be canonical (see routing.RequestKey).
type SqliteRouteCache struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db, now: time.Now}
}

// Fetch a cached response. Expired rows count as a miss.
func (s *SqliteRouteCache) Get(ctx context.Context, key string) (domain.RouteResponse, bool, error) {
	if s.DB == nil {
		return domain.RouteResponse{}, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.RouteResponse{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT
        travel_time_minutes,
        distance_km,
        waypoints,
        geometry,
        expires_at
    FROM route_cache
    WHERE cache_key = ?;
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
func (s *SqliteRouteCache) Put(ctx context.Context, key string, resp domain.RouteResponse, ttl time.Duration) error {
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
	INSERT OR REPLACE INTO route_cache (
        cache_key,
        travel_time_minutes,
        distance_km,
        waypoints,
        geometry,
        expires_at
    )
    VALUES (?, ?, ?, ?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, key, r.travelTime, r.distance, r.waypoints, r.geometry, r.expiresAt); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
