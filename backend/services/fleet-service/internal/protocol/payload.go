package protocol

import (
	"encoding/json"
	"strconv"
	"time"

	"pumpsign/backend/services/fleet-service/internal/models"
)

// DefaultPanelID is used when the caller does not address a specific panel.
const DefaultPanelID = "default"

// PricePayload is the JSON document embedded in a price-update frame.
// Prices are string-encoded decimals so the wire never carries binary
// float rounding artifacts.
type PricePayload struct {
	PanelID   string            `json:"panelId"`
	Timestamp string            `json:"timestamp"`
	Prices    map[string]string `json:"prices"`
}

// overridable in tests
var now = time.Now

// BuildPricePayload serializes prices for one panel as UTF-8 JSON. Every
// price is formatted to exactly two decimal digits.
func BuildPricePayload(prices models.FuelPrices, panelID string) ([]byte, error) {
	if panelID == "" {
		panelID = DefaultPanelID
	}

	formatted := make(map[string]string, len(prices))
	for fuelType, price := range prices {
		formatted[fuelType] = FormatPrice(price)
	}

	payload := PricePayload{
		PanelID:   panelID,
		Timestamp: now().UTC().Format(time.RFC3339),
		Prices:    formatted,
	}
	return json.Marshal(payload)
}

// BuildPriceFrame is the one-call path from prices to wire bytes.
func BuildPriceFrame(prices models.FuelPrices, panelID string) ([]byte, error) {
	payload, err := BuildPricePayload(prices, panelID)
	if err != nil {
		return nil, err
	}
	return BuildFrame(CmdPriceUpdate, payload)
}

// FormatPrice renders a price with exactly two fractional digits.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
