package httpserver

import "net/http"

// Routes aggregates handlers for the fleet service.
type Routes struct {
	ProvisionOrder http.HandlerFunc
	PairTest       http.HandlerFunc
	UpdatePrices   http.HandlerFunc
	FleetStatus    http.HandlerFunc
	StationStatus  http.HandlerFunc
	FleetFeed      http.HandlerFunc
	Health         http.HandlerFunc
}

// NewRouter wires all HTTP routes using method-qualified patterns.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.ProvisionOrder != nil {
		mux.Handle("POST /provisioning/orders", routes.ProvisionOrder)
	}
	if routes.PairTest != nil {
		mux.Handle("POST /provisioning/pair-test", routes.PairTest)
	}
	if routes.UpdatePrices != nil {
		mux.Handle("POST /stations/{id}/prices", routes.UpdatePrices)
	}
	if routes.FleetStatus != nil {
		mux.Handle("GET /fleet/status", routes.FleetStatus)
	}
	if routes.StationStatus != nil {
		mux.Handle("GET /stations/{id}/status", routes.StationStatus)
	}
	if routes.FleetFeed != nil {
		mux.Handle("GET /fleet/ws", routes.FleetFeed)
	}
	if routes.Health != nil {
		mux.Handle("GET /health", routes.Health)
	}
	return mux
}
