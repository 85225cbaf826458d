package provisioning

import (
	"fmt"
	"strings"

	"pumpsign/backend/services/fleet-service/internal/models"
)

// RenderGatewayScript produces the plain-text configuration script applied
// to a gateway device by the field provisioning tooling. The format is an
// external contract; do not reorder or rename directives.
func RenderGatewayScript(device *models.Device) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# pumpsign gateway configuration\n")
	fmt.Fprintf(&b, "# serial: %s\n\n", device.SerialNumber)
	fmt.Fprintf(&b, "set tunnel.address %s\n", device.Address)
	fmt.Fprintf(&b, "set tunnel.password %s\n", device.TunnelPassword)
	fmt.Fprintf(&b, "set admin.password %s\n", device.AdminPassword)
	fmt.Fprintf(&b, "set wifi.password %s\n", device.WiFiPassword)
	b.WriteString("set sync.schedule */15 * * * *\n")
	b.WriteString("commit\n")
	return b.String()
}
