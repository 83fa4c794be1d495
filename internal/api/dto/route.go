package dto

import "route-watch-service/internal/domain"

type RouteSummary struct {
	Key                 string            `json:"key"`
	Name                string            `json:"name"`
	Start               domain.Coordinate `json:"start"`
	End                 domain.Coordinate `json:"end"`
	FreeFlowWaypoints   int               `json:"free_flow_waypoints"`
	CongestionThreshold float64           `json:"congestion_threshold"`
}

type ListRoutesResponse struct {
	Routes []RouteSummary `json:"routes"`
}

type OptimalRouteResponse struct {
	Key       string              `json:"key"`
	Waypoints []domain.Coordinate `json:"waypoints"`
}
