package repository

import (
	"context"
	"database/sql"
	"errors"

	"pumpsign/backend/services/fleet-service/internal/models"
)

// ErrStationNotFound represents missing station rows.
var ErrStationNotFound = errors.New("station not found")

// Store handles fleet persistence: clients, devices, stations and panels.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store instance.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens the transaction that spans one provisioning order.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// GetStation fetches one station by id.
func (s *Store) GetStation(ctx context.Context, id string) (*models.Station, error) {
	const query = `
		SELECT id, client_id, name, location, tunnel_address, gateway_device_id, created_at
		FROM stations
		WHERE id = $1
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query, id)
	var station models.Station
	if err := row.Scan(&station.ID, &station.ClientID, &station.Name, &station.Location,
		&station.TunnelAddress, &station.GatewayDeviceID, &station.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &station, nil
}

// ListStations returns all stations, used to seed monitoring at startup.
func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	const query = `
		SELECT id, client_id, name, location, tunnel_address, gateway_device_id, created_at
		FROM stations
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var station models.Station
		if err := rows.Scan(&station.ID, &station.ClientID, &station.Name, &station.Location,
			&station.TunnelAddress, &station.GatewayDeviceID, &station.CreatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}

// ControllerAddress resolves the display controller serving a station's
// panels. Every panel of a station shares one controller device.
func (s *Store) ControllerAddress(ctx context.Context, stationID string) (string, error) {
	const query = `
		SELECT d.address
		FROM panels p
		JOIN devices d ON d.id = p.controller_device_id
		WHERE p.station_id = $1
		LIMIT 1
	`
	var address string
	if err := s.db.QueryRowContext(ctx, query, stationID).Scan(&address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrStationNotFound
		}
		return "", err
	}
	return address, nil
}

// UpdateDeviceStatus moves a device through its lifecycle.
func (s *Store) UpdateDeviceStatus(ctx context.Context, deviceID string, status models.DeviceStatus) error {
	const query = `UPDATE devices SET status = $2 WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, deviceID, status)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.New("device not found")
	}
	return nil
}
