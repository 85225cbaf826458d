package models

// ClientInfo is the operator-supplied description of the client being set up.
type ClientInfo struct {
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
}

// DeviceDescriptor identifies one physical unit in a provisioning order.
type DeviceDescriptor struct {
	SerialNumber string `json:"serial_number"`
	MACAddress   string `json:"mac_address"`
}

// StationInfo describes the site itself.
type StationInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// PanelDescriptor requests one display at a location.
type PanelDescriptor struct {
	Name string `json:"name"`
}

// LocationOrder is one site within a provisioning order: exactly one gateway,
// exactly one controller, one or more panels.
type LocationOrder struct {
	Station    StationInfo       `json:"station"`
	Gateway    DeviceDescriptor  `json:"gateway"`
	Controller DeviceDescriptor  `json:"controller"`
	Panels     []PanelDescriptor `json:"panels"`
}

// ProvisioningOrder is the input of one orchestration run.
type ProvisioningOrder struct {
	Client    ClientInfo      `json:"client"`
	Locations []LocationOrder `json:"locations"`
}

// ProvisionedClient echoes the created client with its one-time plaintext
// credentials. The plaintext password exists only in this result and in the
// setup payload; storage keeps the bcrypt hash.
type ProvisionedClient struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

// ProvisionedLocation is the per-site output of an order.
type ProvisionedLocation struct {
	Station       Station `json:"station"`
	Gateway       Device  `json:"gateway"`
	Controller    Device  `json:"controller"`
	Panels        []Panel `json:"panels"`
	GatewayScript string  `json:"gateway_script"`
}

// ProvisioningResult is the output of one orchestration run.
type ProvisioningResult struct {
	Success      bool                  `json:"success"`
	Client       *ProvisionedClient    `json:"client,omitempty"`
	Locations    []ProvisionedLocation `json:"locations,omitempty"`
	SetupPayload string                `json:"setup_payload,omitempty"`
	Errors       []string              `json:"errors,omitempty"`
}
