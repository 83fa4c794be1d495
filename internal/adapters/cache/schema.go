package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"route-watch-service/internal/domain"
	"time"
)

// InitSchema creates the route_cache table. The DDL is accepted by both
// Postgres and SQLite.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        cache_key TEXT PRIMARY KEY,
        travel_time_minutes DOUBLE PRECISION NOT NULL,
        distance_km DOUBLE PRECISION NOT NULL,
        waypoints TEXT NOT NULL,
        geometry TEXT NOT NULL,
        expires_at BIGINT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_expires_at
    ON route_cache(expires_at);
	`

	statements := []string{
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// routeRow is the column form of a cached response.
type routeRow struct {
	travelTime float64
	distance   float64
	waypoints  string
	geometry   string
	expiresAt  int64
}

func toRow(resp domain.RouteResponse, ttl time.Duration, now time.Time) (routeRow, error) {
	wps := resp.Waypoints
	if wps == nil {
		wps = []domain.Coordinate{}
	}
	b, err := json.Marshal(wps)
	if err != nil {
		return routeRow{}, fmt.Errorf("encode waypoints: %w", err)
	}

	var expires int64
	if ttl > 0 {
		expires = now.Add(ttl).Unix()
	}

	return routeRow{
		travelTime: resp.TravelTimeMinutes,
		distance:   resp.DistanceKm,
		waypoints:  string(b),
		geometry:   resp.Geometry,
		expiresAt:  expires,
	}, nil
}

func (r routeRow) expired(now time.Time) bool {
	return r.expiresAt != 0 && now.Unix() >= r.expiresAt
}

func (r routeRow) response() (domain.RouteResponse, error) {
	var wps []domain.Coordinate
	if err := json.Unmarshal([]byte(r.waypoints), &wps); err != nil {
		return domain.RouteResponse{}, fmt.Errorf("decode waypoints: %w", err)
	}
	return domain.RouteResponse{
		TravelTimeMinutes: r.travelTime,
		DistanceKm:        r.distance,
		Waypoints:         wps,
		Geometry:          r.geometry,
	}, nil
}
