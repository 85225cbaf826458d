package models

import "time"

// DeviceKind distinguishes the two device roles at a site.
type DeviceKind string

const (
	DeviceKindGateway    DeviceKind = "gateway"
	DeviceKindController DeviceKind = "controller"
)

// DeviceStatus tracks the operational lifecycle of a device.
type DeviceStatus string

const (
	DeviceStatusConfigured  DeviceStatus = "configured"
	DeviceStatusShipped     DeviceStatus = "shipped"
	DeviceStatusDeployed    DeviceStatus = "deployed"
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
)

// Device is a provisioned piece of site hardware: either the tunnel gateway
// or the display controller behind it. Serial and MAC are globally unique.
type Device struct {
	ID             string       `db:"id" json:"id"`
	ClientID       string       `db:"client_id" json:"client_id"`
	Kind           DeviceKind   `db:"kind" json:"kind"`
	SerialNumber   string       `db:"serial_number" json:"serial_number"`
	MACAddress     string       `db:"mac_address" json:"mac_address"`
	Address        string       `db:"address" json:"address"`
	Status         DeviceStatus `db:"status" json:"status"`
	AdminPassword  string       `db:"admin_password" json:"-"`
	TunnelPassword string       `db:"tunnel_password" json:"-"`
	WiFiPassword   string       `db:"wifi_password" json:"-"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
