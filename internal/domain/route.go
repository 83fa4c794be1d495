package domain

import "time"

// DefaultCongestionThreshold is the current/free-flow ratio above which a route counts as congested.
const DefaultCongestionThreshold = 1.5

// RouteRequest asks a provider for a route between Start and End, passing
// through Waypoints in order.
type RouteRequest struct {
	Start        Coordinate
	End          Coordinate
	Waypoints    []Coordinate
	AvoidTraffic bool
}

// RouteResponse is a provider's answer to a RouteRequest.
// Waypoints is the provider's resolved path and may differ from the
// requested waypoints. Geometry is opaque and empty when unavailable.
type RouteResponse struct {
	TravelTimeMinutes float64      `json:"travel_time_minutes"`
	DistanceKm        float64      `json:"distance_km"`
	Waypoints         []Coordinate `json:"waypoints"`
	Geometry          string       `json:"geometry,omitempty"`
}

// RouteConfig describes one monitored route.
type RouteConfig struct {
	Name                string       `json:"name" validate:"required"`
	Start               Coordinate   `json:"start"`
	End                 Coordinate   `json:"end"`
	FreeFlowRoute       []Coordinate `json:"free_flow_route" validate:"dive"`
	CongestionThreshold float64      `json:"congestion_threshold" validate:"gt=0"`
}

// CongestionResult is the verdict of a single congestion check.
// It is created once per evaluation and never modified afterwards.
type CongestionResult struct {
	RouteName             string    `json:"route_name" yaml:"route_name"`
	IsCongested           bool      `json:"is_congested" yaml:"is_congested"`
	CurrentTravelTime     float64   `json:"current_travel_time" yaml:"current_travel_time"`
	FreeFlowTravelTime    float64   `json:"free_flow_travel_time" yaml:"free_flow_travel_time"`
	CongestionRatio       float64   `json:"congestion_ratio" yaml:"congestion_ratio"`
	AlternativeAvailable  bool      `json:"alternative_available" yaml:"alternative_available"`
	AlternativeTravelTime *float64  `json:"alternative_travel_time,omitempty" yaml:"alternative_travel_time,omitempty"`
	Timestamp             time.Time `json:"timestamp" yaml:"timestamp"`
}

// Actionable reports whether the result should trigger an alert.
func (r *CongestionResult) Actionable() bool {
	return r.IsCongested && r.AlternativeAvailable
}
