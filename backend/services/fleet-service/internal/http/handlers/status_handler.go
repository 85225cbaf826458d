package handlers

import (
	"net/http"

	"pumpsign/backend/services/fleet-service/internal/monitor"
)

// FleetStatusSource exposes monitor state to the status endpoint.
type FleetStatusSource interface {
	Snapshot() map[string]monitor.ConnectionStatus
	Stats() monitor.Stats
}

// NewFleetStatusHandler handles GET /fleet/status.
func NewFleetStatusHandler(source FleetStatusSource) http.HandlerFunc {
	type response struct {
		Stats    monitor.Stats                       `json:"stats"`
		Stations map[string]monitor.ConnectionStatus `json:"stations"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Stats:    source.Stats(),
			Stations: source.Snapshot(),
		})
	}
}

// NewStationStatusHandler handles GET /stations/{id}/status.
func NewStationStatusHandler(source interface {
	Status(stationID string) (monitor.ConnectionStatus, bool)
}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := r.PathValue("id")
		status, ok := source.Status(stationID)
		if !ok {
			writeError(w, http.StatusNotFound, "station is not monitored")
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
