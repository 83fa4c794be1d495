package routing

import (
	"context"
	"fmt"
	"route-watch-service/internal/domain"
)

// ChunkWaypoints splits waypoints into consecutive groups of at most capacity
// entries. An empty input yields no groups.
func ChunkWaypoints(waypoints []domain.Coordinate, capacity int) [][]domain.Coordinate {
	if capacity < 1 {
		capacity = 1
	}

	chunks := make([][]domain.Coordinate, 0, (len(waypoints)+capacity-1)/capacity)
	for start := 0; start < len(waypoints); start += capacity {
		end := start + capacity
		if end > len(waypoints) {
			end = len(waypoints)
		}
		chunks = append(chunks, waypoints[start:end])
	}
	return chunks
}

// getChunkedRoute resolves a route whose waypoint list exceeds the per-request
// limit. Each sub-request starts where the previous one's resolved path ended.
// Interior sub-requests end at their group's last waypoint; the final one ends
// at the real destination. Totals are summed and the resolved paths are
// concatenated without the duplicated boundary point. The combined geometry
// cannot be rebuilt, so it is left empty.
func (m *MapboxProvider) getChunkedRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	chunks := ChunkWaypoints(req.Waypoints, m.maxCoordinates-2)

	m.logger.WithField("chunks", len(chunks)).
		WithField("waypoints", len(req.Waypoints)).
		Debug("splitting mapbox request")

	var out domain.RouteResponse
	segStart := req.Start

	for i, group := range chunks {
		segEnd := req.End
		via := group
		if i < len(chunks)-1 {
			segEnd = group[len(group)-1]
			via = group[:len(group)-1]
		}

		resp, err := m.fetchRoute(ctx, domain.RouteRequest{
			Start:        segStart,
			End:          segEnd,
			Waypoints:    via,
			AvoidTraffic: req.AvoidTraffic,
		})
		if err != nil {
			return domain.RouteResponse{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		out.TravelTimeMinutes += resp.TravelTimeMinutes
		out.DistanceKm += resp.DistanceKm

		switch {
		case i == 0:
			out.Waypoints = append(out.Waypoints, resp.Waypoints...)
		case len(resp.Waypoints) > 0:
			out.Waypoints = append(out.Waypoints, resp.Waypoints[1:]...)
		}

		if n := len(resp.Waypoints); n > 0 {
			segStart = resp.Waypoints[n-1]
		} else {
			segStart = segEnd
		}
	}

	return out, nil
}
