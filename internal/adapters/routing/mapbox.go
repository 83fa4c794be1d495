package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/platform/obs"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	defaultMapboxBaseURL = "https://api.mapbox.com/directions/v5/mapbox"

	// Mapbox Directions accepts at most 25 coordinates (start and end included).
	defaultMapboxMaxCoordinates = 25
)

type mapboxResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Duration float64         `json:"duration"`
		Distance float64         `json:"distance"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

type geoJSONLine struct {
	Coordinates [][]float64 `json:"coordinates"`
}

// MapboxProvider implements RouteProvider using the Mapbox Directions API.
//
// Requests carrying more waypoints than a single call allows are split into
// consecutive sub-requests and stitched back together (see chunk.go).
// The provider is safe for concurrent use.
type MapboxProvider struct {
	client         httpClient
	apiKey         string
	baseURL        string
	maxCoordinates int
	logger         logrus.FieldLogger
}

func NewMapboxProvider(s Settings, logger logrus.FieldLogger) (*MapboxProvider, error) {
	if s.APIKey == "" {
		return nil, errors.New("mapbox api key is empty")
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := &MapboxProvider{
		client:         newHTTPClient(s.Timeout),
		apiKey:         s.APIKey,
		baseURL:        defaultMapboxBaseURL,
		maxCoordinates: defaultMapboxMaxCoordinates,
		logger:         logger,
	}
	if s.BaseURL != "" {
		p.baseURL = strings.TrimRight(s.BaseURL, "/")
	}
	if s.MaxCoordinates > 0 {
		if s.MaxCoordinates < 3 {
			return nil, fmt.Errorf("mapbox max coordinates must be at least 3, got %d", s.MaxCoordinates)
		}
		p.maxCoordinates = s.MaxCoordinates
	}

	return p, nil
}

func (m *MapboxProvider) GetRoute(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResponse, err error) {
	defer obs.Time(ctx, m.logger, "mapbox.GetRoute")(&err)

	if len(req.Waypoints) > m.maxCoordinates-2 {
		resp, err := m.getChunkedRoute(ctx, req)
		if err != nil {
			return domain.RouteResponse{}, &domain.ProviderError{Provider: ProviderMapbox, Op: "chunked route", Err: err}
		}
		return resp, nil
	}

	resp, err := m.fetchRoute(ctx, req)
	if err != nil {
		return domain.RouteResponse{}, &domain.ProviderError{Provider: ProviderMapbox, Op: "route", Err: err}
	}
	return resp, nil
}

func (m *MapboxProvider) GetOptimalRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteResponse, error) {
	return m.GetRoute(ctx, domain.RouteRequest{Start: start, End: end, AvoidTraffic: true})
}

// fetchRoute issues a single Directions call. The request must fit the
// coordinate limit.
func (m *MapboxProvider) fetchRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	endpoint := m.routeURL(req)

	var decoded mapboxResponse
	if err := m.client.getJSON(ctx, endpoint, &decoded); err != nil {
		return domain.RouteResponse{}, err
	}

	if decoded.Code != "" && decoded.Code != "Ok" {
		return domain.RouteResponse{}, fmt.Errorf("%w: %s %s", domain.ErrNoRoute, decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return domain.RouteResponse{}, domain.ErrNoRoute
	}

	route := decoded.Routes[0]

	var line geoJSONLine
	if len(route.Geometry) > 0 {
		if err := json.Unmarshal(route.Geometry, &line); err != nil {
			return domain.RouteResponse{}, fmt.Errorf("decode geometry: %w", err)
		}
	}

	waypoints := make([]domain.Coordinate, 0, len(line.Coordinates))
	for i, pair := range line.Coordinates {
		if len(pair) < 2 {
			return domain.RouteResponse{}, fmt.Errorf("invalid geometry coordinate at index %d", i)
		}
		// GeoJSON positions are [lng, lat].
		waypoints = append(waypoints, domain.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return domain.RouteResponse{
		TravelTimeMinutes: route.Duration / 60,
		DistanceKm:        route.Distance / 1000,
		Waypoints:         waypoints,
		Geometry:          string(route.Geometry),
	}, nil
}

func (m *MapboxProvider) routeURL(req domain.RouteRequest) string {
	profile := "driving-traffic"
	if req.AvoidTraffic {
		profile = "driving"
	}

	coords := make([]string, 0, len(req.Waypoints)+2)
	coords = append(coords, lngLat(req.Start))
	for _, wp := range req.Waypoints {
		coords = append(coords, lngLat(wp))
	}
	coords = append(coords, lngLat(req.End))

	q := url.Values{}
	q.Set("access_token", m.apiKey)
	q.Set("geometries", "geojson")
	q.Set("overview", "full")
	q.Set("steps", "false")

	return fmt.Sprintf("%s/%s/%s?%s", m.baseURL, profile, strings.Join(coords, ";"), q.Encode())
}

func lngLat(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

