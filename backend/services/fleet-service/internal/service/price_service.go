package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/models"
	"pumpsign/backend/services/fleet-service/internal/transport"
)

const (
	minPrice = 0.01
	maxPrice = 999.99

	// maxFuelTypes bounds the extension mechanism for non-standard fuels.
	maxFuelTypes = 16
)

var (
	// ErrNoPrices is returned for an empty update.
	ErrNoPrices = errors.New("prices: at least one fuel type is required")
	// ErrPriceOutOfRange covers prices outside [0.01, 999.99].
	ErrPriceOutOfRange = errors.New("prices: price out of range")
	// ErrPricePrecision covers more than two fractional digits.
	ErrPricePrecision = errors.New("prices: more than two fractional digits")
	// ErrInvalidFuelType covers unsanitized extension keys.
	ErrInvalidFuelType = errors.New("prices: invalid fuel type")
	// ErrTooManyFuelTypes bounds the extension set.
	ErrTooManyFuelTypes = fmt.Errorf("prices: more than %d fuel types", maxFuelTypes)
)

var fuelTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// StationDirectory resolves stations and their controller addresses; the
// repository satisfies this.
type StationDirectory interface {
	GetStation(ctx context.Context, id string) (*models.Station, error)
	ControllerAddress(ctx context.Context, stationID string) (string, error)
}

// PriceSender delivers a validated price update; transport.Sender satisfies
// this.
type PriceSender interface {
	SendPriceUpdate(ctx context.Context, address string, prices models.FuelPrices, panelID string) transport.Result
}

// PriceService validates price updates and hands them to the transport. It
// performs one deterministic attempt; retry policy belongs to the caller.
type PriceService struct {
	stations StationDirectory
	sender   PriceSender
	logger   *zap.Logger
}

// NewPriceService builds a PriceService.
func NewPriceService(stations StationDirectory, sender PriceSender, logger *zap.Logger) *PriceService {
	return &PriceService{stations: stations, sender: sender, logger: logger}
}

// UpdatePrices validates prices, resolves the station's controller address
// and sends a single price-update command.
func (s *PriceService) UpdatePrices(ctx context.Context, stationID string, prices models.FuelPrices, panelID string) (transport.Result, error) {
	if err := ValidatePrices(prices); err != nil {
		return transport.Result{}, err
	}

	station, err := s.stations.GetStation(ctx, stationID)
	if err != nil {
		return transport.Result{}, fmt.Errorf("resolve station %s: %w", stationID, err)
	}
	address, err := s.stations.ControllerAddress(ctx, station.ID)
	if err != nil {
		return transport.Result{}, fmt.Errorf("resolve controller for station %s: %w", stationID, err)
	}

	result := s.sender.SendPriceUpdate(ctx, address, prices, panelID)
	if !result.Success {
		s.logger.Warn("price update failed",
			zap.String("station_id", stationID),
			zap.String("error", result.Err))
	}
	return result, nil
}

// ValidatePrices enforces the accepted price domain: every price within
// [0.01, 999.99] with at most two fractional digits, keys either well-known
// or sanitized extension names.
func ValidatePrices(prices models.FuelPrices) error {
	if len(prices) == 0 {
		return ErrNoPrices
	}
	if len(prices) > maxFuelTypes {
		return ErrTooManyFuelTypes
	}
	for fuelType, price := range prices {
		if !models.IsWellKnownFuelType(fuelType) && !fuelTypePattern.MatchString(fuelType) {
			return fmt.Errorf("%w: %q", ErrInvalidFuelType, fuelType)
		}
		if price < minPrice || price > maxPrice {
			return fmt.Errorf("%w: %s=%v", ErrPriceOutOfRange, fuelType, price)
		}
		cents := price * 100
		if math.Abs(cents-math.Round(cents)) > 1e-6 {
			return fmt.Errorf("%w: %s=%v", ErrPricePrecision, fuelType, price)
		}
	}
	return nil
}
