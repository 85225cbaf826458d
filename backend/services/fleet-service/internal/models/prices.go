package models

import "errors"

// ErrDuplicateIdentifier signals a serial number or MAC address that is
// already taken; surfaced by the persistence layer on unique violations.
var ErrDuplicateIdentifier = errors.New("duplicate device identifier")

// FuelPrices maps a fuel type name to its price. The well-known types are
// regular, premium and diesel; additional sanitized types are allowed up to
// a fixed cap. Accepted prices are within [0.01, 999.99] with at most two
// fractional digits.
type FuelPrices map[string]float64

// WellKnownFuelTypes are always accepted as keys without sanitization.
var WellKnownFuelTypes = []string{"regular", "premium", "diesel"}

// IsWellKnownFuelType reports whether the key belongs to the closed set.
func IsWellKnownFuelType(key string) bool {
	for _, t := range WellKnownFuelTypes {
		if t == key {
			return true
		}
	}
	return false
}
