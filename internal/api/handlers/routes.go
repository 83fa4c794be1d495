package handlers

import (
	"context"
	"net/http"
	"route-watch-service/internal/api/dto"
	"route-watch-service/internal/domain"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RouteSource looks up configured routes.
type RouteSource interface {
	RouteNames() []string
	Route(name string) (domain.RouteConfig, error)
}

// Evaluator runs congestion checks.
type Evaluator interface {
	Evaluate(ctx context.Context, rc domain.RouteConfig) (*domain.CongestionResult, error)
	ResolveOptimalWaypoints(ctx context.Context, start, end domain.Coordinate) ([]domain.Coordinate, error)
}

type RouteHandler struct {
	Routes RouteSource
	Engine Evaluator
	Logger logrus.FieldLogger
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.Routes.RouteNames()

	resp := dto.ListRoutesResponse{Routes: make([]dto.RouteSummary, 0, len(names))}
	for _, key := range names {
		rc, err := h.Routes.Route(key)
		if err != nil {
			writeError(w, r, statusFor(err), err.Error())
			return
		}
		resp.Routes = append(resp.Routes, dto.RouteSummary{
			Key:                 key,
			Name:                rc.Name,
			Start:               rc.Start,
			End:                 rc.End,
			FreeFlowWaypoints:   len(rc.FreeFlowRoute),
			CongestionThreshold: rc.CongestionThreshold,
		})
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// Check evaluates the named route on demand.
func (h *RouteHandler) Check(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["name"]

	rc, err := h.Routes.Route(key)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	result, err := h.Engine.Evaluate(r.Context(), rc)
	if err != nil {
		h.Logger.WithField("route", key).WithError(err).Warn("on-demand check failed")
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// Optimal returns the interior waypoints of the traffic-free route.
func (h *RouteHandler) Optimal(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["name"]

	rc, err := h.Routes.Route(key)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	waypoints, err := h.Engine.ResolveOptimalWaypoints(r.Context(), rc.Start, rc.End)
	if err != nil {
		h.Logger.WithField("route", key).WithError(err).Warn("optimal route lookup failed")
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OptimalRouteResponse{Key: key, Waypoints: waypoints})
}
