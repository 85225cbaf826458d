package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/models"
	"pumpsign/backend/services/fleet-service/internal/provisioning"
)

// StationRegistrar starts monitoring for freshly provisioned stations; the
// fleet monitor satisfies this.
type StationRegistrar interface {
	StartMonitoring(stationID, address string)
}

// NewProvisionHandler handles POST /provisioning/orders.
func NewProvisionHandler(orchestrator *provisioning.Orchestrator, registrar StationRegistrar, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var order models.ProvisioningOrder
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result := orchestrator.Provision(r.Context(), &order)
		if !result.Success {
			writeJSON(w, http.StatusUnprocessableEntity, result)
			return
		}

		for _, loc := range result.Locations {
			registrar.StartMonitoring(loc.Station.ID, loc.Station.TunnelAddress)
		}
		logger.Info("new stations registered for monitoring",
			zap.Int("stations", len(result.Locations)))

		writeJSON(w, http.StatusCreated, result)
	}
}

// NewPairTestHandler handles POST /provisioning/pair-test: a read-only
// connectivity check for a candidate device pair.
func NewPairTestHandler(tester *provisioning.PairTester) http.HandlerFunc {
	type request struct {
		GatewayAddress string `json:"gateway_address"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.GatewayAddress == "" {
			writeError(w, http.StatusBadRequest, "gateway_address is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()
		writeJSON(w, http.StatusOK, tester.Test(ctx, req.GatewayAddress))
	}
}
