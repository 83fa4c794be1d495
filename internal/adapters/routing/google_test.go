package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"route-watch-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleTwoLegs = `{
  "status": "OK",
  "routes": [{
    "legs": [
      {"duration": {"value": 600}, "duration_in_traffic": {"value": 900}, "distance": {"value": 5000}},
      {"duration": {"value": 1200}, "distance": {"value": 7000}}
    ],
    "overview_polyline": {"points": "abc~def"}
  }]
}`

func newTestGoogle(t *testing.T, body string, seen *url.Values) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		if seen != nil {
			*seen = r.URL.Query()
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	p, err := NewGoogleProvider(Settings{APIKey: "gkey", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return p
}

func TestGoogleGetRoutePrefersTrafficDuration(t *testing.T) {
	var q url.Values
	p := newTestGoogle(t, googleTwoLegs, &q)

	start := domain.Coordinate{Lat: 1, Lon: 2}
	wp := domain.Coordinate{Lat: 1.5, Lon: 2.5}
	end := domain.Coordinate{Lat: 3, Lon: 4}

	resp, err := p.GetRoute(context.Background(), domain.RouteRequest{
		Start:     start,
		End:       end,
		Waypoints: []domain.Coordinate{wp, wp},
	})
	require.NoError(t, err)

	assert.InDelta(t, 35.0, resp.TravelTimeMinutes, 1e-9) // 900 + 1200 seconds
	assert.InDelta(t, 12.0, resp.DistanceKm, 1e-9)
	assert.Equal(t, []domain.Coordinate{start, wp, wp, end}, resp.Waypoints)
	assert.Equal(t, "abc~def", resp.Geometry)

	assert.Equal(t, "1,2", q.Get("origin"))
	assert.Equal(t, "3,4", q.Get("destination"))
	assert.Equal(t, "gkey", q.Get("key"))
	assert.Equal(t, "metric", q.Get("units"))
	assert.Equal(t, "1.5,2.5|1.5,2.5", q.Get("waypoints"))
	assert.Equal(t, "now", q.Get("departure_time"))
}

func TestGoogleAvoidTrafficIgnoresTrafficDuration(t *testing.T) {
	var q url.Values
	p := newTestGoogle(t, googleTwoLegs, &q)

	resp, err := p.GetOptimalRoute(context.Background(), domain.Coordinate{Lat: 1, Lon: 2}, domain.Coordinate{Lat: 3, Lon: 4})
	require.NoError(t, err)

	assert.InDelta(t, 30.0, resp.TravelTimeMinutes, 1e-9)
	assert.False(t, q.Has("departure_time"))
	assert.False(t, q.Has("waypoints"))
	assert.Len(t, resp.Waypoints, 2)
}

func TestGoogleStatusNotOK(t *testing.T) {
	for _, body := range []string{
		`{"status":"ZERO_RESULTS","routes":[]}`,
		`{"status":"REQUEST_DENIED","error_message":"bad key","routes":[]}`,
		`{"status":"OK","routes":[]}`,
	} {
		p := newTestGoogle(t, body, nil)

		_, err := p.GetRoute(context.Background(), domain.RouteRequest{})
		var perr *domain.ProviderError
		require.ErrorAs(t, err, &perr, body)
		assert.Equal(t, ProviderGoogle, perr.Provider)
		assert.ErrorIs(t, err, domain.ErrNoRoute)
	}
}
