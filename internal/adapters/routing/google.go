package routing

import (
	"context"
	"fmt"
	"net/url"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/platform/obs"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const defaultGoogleBaseURL = "https://maps.googleapis.com"

type googleValue struct {
	Value float64 `json:"value"`
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []struct {
			Duration          googleValue  `json:"duration"`
			DurationInTraffic *googleValue `json:"duration_in_traffic"`
			Distance          googleValue  `json:"distance"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// GoogleProvider implements RouteProvider using the Google Directions API.
type GoogleProvider struct {
	client  httpClient
	apiKey  string
	baseURL string
	logger  logrus.FieldLogger
}

func NewGoogleProvider(s Settings, logger logrus.FieldLogger) (*GoogleProvider, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("google maps api key is empty")
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := &GoogleProvider{
		client:  newHTTPClient(s.Timeout),
		apiKey:  s.APIKey,
		baseURL: defaultGoogleBaseURL,
		logger:  logger,
	}
	if s.BaseURL != "" {
		p.baseURL = strings.TrimRight(s.BaseURL, "/")
	}

	return p, nil
}

func (g *GoogleProvider) GetRoute(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResponse, err error) {
	defer obs.Time(ctx, g.logger, "google.GetRoute")(&err)

	var decoded googleResponse
	if err := g.client.getJSON(ctx, g.routeURL(req), &decoded); err != nil {
		return domain.RouteResponse{}, &domain.ProviderError{Provider: ProviderGoogle, Op: "route", Err: err}
	}

	if decoded.Status != "OK" || len(decoded.Routes) == 0 {
		cause := fmt.Errorf("%w: status %q", domain.ErrNoRoute, decoded.Status)
		if decoded.ErrorMessage != "" {
			cause = fmt.Errorf("%w: status %q: %s", domain.ErrNoRoute, decoded.Status, decoded.ErrorMessage)
		}
		return domain.RouteResponse{}, &domain.ProviderError{Provider: ProviderGoogle, Op: "route", Err: cause}
	}

	route := decoded.Routes[0]

	var seconds, meters float64
	for _, leg := range route.Legs {
		if leg.DurationInTraffic != nil && !req.AvoidTraffic {
			seconds += leg.DurationInTraffic.Value
		} else {
			seconds += leg.Duration.Value
		}
		meters += leg.Distance.Value
	}

	waypoints := make([]domain.Coordinate, 0, len(req.Waypoints)+2)
	waypoints = append(waypoints, req.Start)
	waypoints = append(waypoints, req.Waypoints...)
	waypoints = append(waypoints, req.End)

	return domain.RouteResponse{
		TravelTimeMinutes: seconds / 60,
		DistanceKm:        meters / 1000,
		Waypoints:         waypoints,
		Geometry:          route.OverviewPolyline.Points,
	}, nil
}

func (g *GoogleProvider) GetOptimalRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteResponse, error) {
	return g.GetRoute(ctx, domain.RouteRequest{Start: start, End: end, AvoidTraffic: true})
}

func (g *GoogleProvider) routeURL(req domain.RouteRequest) string {
	q := url.Values{}
	q.Set("origin", latLng(req.Start))
	q.Set("destination", latLng(req.End))
	q.Set("key", g.apiKey)
	q.Set("units", "metric")

	if len(req.Waypoints) > 0 {
		parts := make([]string, len(req.Waypoints))
		for i, wp := range req.Waypoints {
			parts[i] = latLng(wp)
		}
		q.Set("waypoints", strings.Join(parts, "|"))
	}
	if !req.AvoidTraffic {
		q.Set("departure_time", "now")
	}

	return g.baseURL + "/maps/api/directions/json?" + q.Encode()
}

func latLng(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}
