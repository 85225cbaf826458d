package provisioning

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	tunnelPrefix   = "10.8"
	hostsPerSubnet = 254
	// MaxLocationsPerOrder exhausts the 10.8.x.y pool at 254 subnets of 254 hosts.
	MaxLocationsPerOrder = hostsPerSubnet * hostsPerSubnet

	// controllerHostOffset puts the display controller 100 above its gateway
	// on the same subnet, keeping the pair human-auditable.
	controllerHostOffset = 100
)

// AllocateTunnelAddress maps a location index to a 10.8.{subnet}.{host}
// address. Indexes within one order never collide.
func AllocateTunnelAddress(locationIndex int) (string, error) {
	if locationIndex < 0 || locationIndex >= MaxLocationsPerOrder {
		return "", fmt.Errorf("provisioning: location index %d out of range [0, %d)", locationIndex, MaxLocationsPerOrder)
	}
	subnet := locationIndex/hostsPerSubnet + 1
	host := locationIndex%hostsPerSubnet + 1
	return fmt.Sprintf("%s.%d.%d", tunnelPrefix, subnet, host), nil
}

// deriveControllerAddress adds controllerHostOffset to the gateway's last
// octet. Gateways with a host octet above 155 would push the controller past
// 255; that is rejected rather than wrapped, so an out-of-policy order fails
// loudly instead of colliding.
func deriveControllerAddress(gatewayAddress string) (string, error) {
	parts := strings.Split(gatewayAddress, ".")
	if len(parts) != 4 {
		return "", fmt.Errorf("provisioning: malformed gateway address %q", gatewayAddress)
	}
	last, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", fmt.Errorf("provisioning: malformed gateway address %q", gatewayAddress)
	}
	derived := last + controllerHostOffset
	if derived > 255 {
		return "", fmt.Errorf("provisioning: controller octet %d out of range for gateway %s", derived, gatewayAddress)
	}
	parts[3] = strconv.Itoa(derived)
	return strings.Join(parts, "."), nil
}
