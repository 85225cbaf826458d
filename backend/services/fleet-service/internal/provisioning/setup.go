package provisioning

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// SetupPayload is handed to the client out-of-band (printed as a scannable
// code) for first-time app configuration. Base64-encoded JSON; the field set
// is an external contract.
type SetupPayload struct {
	Type       string   `json:"type"`
	Username   string   `json:"username"`
	Password   string   `json:"password"`
	StationIDs []string `json:"stationIds"`
	APIURL     string   `json:"apiUrl"`
	SetupDate  string   `json:"setupDate"`
}

const setupPayloadType = "client-setup"

// overridable in tests
var setupNow = time.Now

// BuildSetupPayload encodes the one-time onboarding payload.
func BuildSetupPayload(username, password string, stationIDs []string, apiURL string) (string, error) {
	payload := SetupPayload{
		Type:       setupPayloadType,
		Username:   username,
		Password:   password,
		StationIDs: stationIDs,
		APIURL:     apiURL,
		SetupDate:  setupNow().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSetupPayload is the inverse of BuildSetupPayload, used by support
// tooling and tests.
func DecodeSetupPayload(encoded string) (*SetupPayload, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var payload SetupPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
