package models

import "time"

// Station is one physical site: a forecourt with a tunnel gateway and one or
// more price panels. TunnelAddress is unique across the fleet.
type Station struct {
	ID              string    `db:"id" json:"id"`
	ClientID        string    `db:"client_id" json:"client_id"`
	Name            string    `db:"name" json:"name"`
	Location        string    `db:"location" json:"location"`
	TunnelAddress   string    `db:"tunnel_address" json:"tunnel_address"`
	GatewayDeviceID string    `db:"gateway_device_id" json:"gateway_device_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Panel is one physical LED price display, linked to the station's gateway
// and to the controller device that drives it.
type Panel struct {
	ID                 string    `db:"id" json:"id"`
	StationID          string    `db:"station_id" json:"station_id"`
	Name               string    `db:"name" json:"name"`
	GatewayDeviceID    string    `db:"gateway_device_id" json:"gateway_device_id"`
	ControllerDeviceID string    `db:"controller_device_id" json:"controller_device_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Client owns stations and devices; Username/PasswordHash form the login
// principal generated during provisioning.
type Client struct {
	ID           string    `db:"id" json:"id"`
	CompanyName  string    `db:"company_name" json:"company_name"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
