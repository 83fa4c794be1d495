package api

import (
	"net/http"
	"route-watch-service/internal/api/handlers"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(routes handlers.RouteSource, engine handlers.Evaluator, logger logrus.FieldLogger) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))

	routeHandler := &handlers.RouteHandler{Routes: routes, Engine: engine, Logger: logger}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/routes", routeHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/routes/{name}/check", routeHandler.Check).Methods(http.MethodGet)
	r.HandleFunc("/routes/{name}/optimal", routeHandler.Optimal).Methods(http.MethodGet)

	return r
}
