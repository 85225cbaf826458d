package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"pumpsign/backend/services/fleet-service/internal/models"
)

const uniqueViolationCode = "23505"

// Tx wraps the single transaction a provisioning order runs in.
type Tx struct {
	tx *sql.Tx
}

// CreateClient inserts the client record with its login principal.
func (t *Tx) CreateClient(ctx context.Context, client *models.Client) error {
	const query = `
		INSERT INTO clients (id, company_name, contact_email, username, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := t.tx.QueryRowContext(ctx, query,
		client.ID, client.CompanyName, client.ContactEmail, client.Username, client.PasswordHash).
		Scan(&client.CreatedAt)
	return mapUnique(err)
}

// CreateDevice inserts one device row. Serial and MAC carry unique
// constraints; violations surface as models.ErrDuplicateIdentifier.
func (t *Tx) CreateDevice(ctx context.Context, device *models.Device) error {
	const query = `
		INSERT INTO devices (id, client_id, kind, serial_number, mac_address, address,
			status, admin_password, tunnel_password, wifi_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := t.tx.QueryRowContext(ctx, query,
		device.ID, device.ClientID, device.Kind, device.SerialNumber, device.MACAddress,
		device.Address, device.Status, device.AdminPassword, device.TunnelPassword, device.WiFiPassword).
		Scan(&device.CreatedAt)
	return mapUnique(err)
}

// CreateStation inserts one station row.
func (t *Tx) CreateStation(ctx context.Context, station *models.Station) error {
	const query = `
		INSERT INTO stations (id, client_id, name, location, tunnel_address, gateway_device_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := t.tx.QueryRowContext(ctx, query,
		station.ID, station.ClientID, station.Name, station.Location,
		station.TunnelAddress, station.GatewayDeviceID).
		Scan(&station.CreatedAt)
	return mapUnique(err)
}

// CreatePanel inserts one panel row.
func (t *Tx) CreatePanel(ctx context.Context, panel *models.Panel) error {
	const query = `
		INSERT INTO panels (id, station_id, name, gateway_device_id, controller_device_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := t.tx.QueryRowContext(ctx, query,
		panel.ID, panel.StationID, panel.Name, panel.GatewayDeviceID, panel.ControllerDeviceID).
		Scan(&panel.CreatedAt)
	return mapUnique(err)
}

// Commit finishes the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts it; safe to call after a failed Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// mapUnique converts postgres unique violations into the domain sentinel so
// the orchestrator can name the offending identifier.
func mapUnique(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, models.ErrDuplicateIdentifier)
	}
	return err
}
