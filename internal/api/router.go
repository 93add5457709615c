package api

import (
	"net/http"
	"route-optimizer/internal/api/handlers"
	"time"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc handlers.RouteService, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Service: svc,
		Timeout: requestTimeout,
	}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /geocode", routeHandler.Geocode)
	mux.HandleFunc("POST /routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("GET /traffic", routeHandler.Traffic)

	return requestIDMiddleware(loggingMiddleware(mux))
}
