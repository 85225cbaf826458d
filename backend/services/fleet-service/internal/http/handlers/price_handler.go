package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pumpsign/backend/services/fleet-service/internal/models"
	"pumpsign/backend/services/fleet-service/internal/repository"
	"pumpsign/backend/services/fleet-service/internal/service"
)

// NewPriceHandler handles POST /stations/{id}/prices.
func NewPriceHandler(prices *service.PriceService) http.HandlerFunc {
	type request struct {
		Prices  models.FuelPrices `json:"prices"`
		PanelID string            `json:"panel_id"`
	}
	type response struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		stationID := strings.TrimSpace(r.PathValue("id"))
		if stationID == "" {
			writeError(w, http.StatusBadRequest, "station id is required")
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := prices.UpdatePrices(r.Context(), stationID, req.Prices, req.PanelID)
		if err != nil {
			if errors.Is(err, repository.ErrStationNotFound) {
				writeError(w, http.StatusNotFound, "station not found")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if !result.Success {
			// the attempt ran but the device declined or was unreachable;
			// retry policy is the caller's call
			writeJSON(w, http.StatusBadGateway, response{Error: result.Err})
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true})
	}
}
