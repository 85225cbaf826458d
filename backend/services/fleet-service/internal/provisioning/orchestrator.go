package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/models"
)

const clientPasswordLength = 20

// Store opens transactions for provisioning runs.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the transactional persistence collaborator: every create happens
// inside one transaction and either all survive or none do.
type Tx interface {
	CreateClient(ctx context.Context, client *models.Client) error
	CreateDevice(ctx context.Context, device *models.Device) error
	CreateStation(ctx context.Context, station *models.Station) error
	CreatePanel(ctx context.Context, panel *models.Panel) error
	Commit() error
	Rollback() error
}

// Config carries orchestrator settings.
type Config struct {
	// APIURL ends up in the setup payload for client app configuration.
	APIURL string
}

// Orchestrator turns a multi-location provisioning order into persisted
// client/device/station/panel rows, all-or-nothing.
type Orchestrator struct {
	store  Store
	cfg    Config
	logger *zap.Logger
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(store Store, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{store: store, cfg: cfg, logger: logger}
}

// Provision executes one order inside a single transaction. Any failure at
// any step rolls the whole order back; a half-committed order would burn
// globally unique serials and MACs.
func (o *Orchestrator) Provision(ctx context.Context, order *models.ProvisioningOrder) *models.ProvisioningResult {
	if errs := validateOrder(order); len(errs) > 0 {
		return failure(errs...)
	}

	tx, err := o.store.Begin(ctx)
	if err != nil {
		return failure(fmt.Sprintf("begin transaction: %v", err))
	}

	result, err := o.provisionTx(ctx, tx, order)
	if err != nil {
		_ = tx.Rollback()
		o.logger.Warn("provisioning order rolled back",
			zap.String("company", order.Client.CompanyName),
			zap.Error(err))
		return failure(err.Error())
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return failure(fmt.Sprintf("commit: %v", err))
	}

	result.Success = true
	o.logger.Info("provisioning order committed",
		zap.String("client_id", result.Client.ID),
		zap.Int("locations", len(result.Locations)))
	return result
}

func (o *Orchestrator) provisionTx(ctx context.Context, tx Tx, order *models.ProvisioningOrder) (*models.ProvisioningResult, error) {
	username, err := generateUsername()
	if err != nil {
		return nil, err
	}
	password, err := generatePassword(clientPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		ID:           uuid.NewString(),
		CompanyName:  order.Client.CompanyName,
		ContactEmail: order.Client.ContactEmail,
		Username:     username,
		PasswordHash: hash,
	}
	if err := tx.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("create client %q: %w", client.CompanyName, err)
	}

	result := &models.ProvisioningResult{
		Client: &models.ProvisionedClient{
			ID:          client.ID,
			CompanyName: client.CompanyName,
			Username:    username,
			Password:    password,
		},
	}

	var stationIDs []string
	for i, loc := range order.Locations {
		provisioned, err := o.provisionLocation(ctx, tx, client.ID, i, loc)
		if err != nil {
			return nil, fmt.Errorf("location %d (%s): %w", i, loc.Station.Name, err)
		}
		result.Locations = append(result.Locations, *provisioned)
		stationIDs = append(stationIDs, provisioned.Station.ID)
	}

	setup, err := BuildSetupPayload(username, password, stationIDs, o.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("build setup payload: %w", err)
	}
	result.SetupPayload = setup

	return result, nil
}

func (o *Orchestrator) provisionLocation(ctx context.Context, tx Tx, clientID string, index int, loc models.LocationOrder) (*models.ProvisionedLocation, error) {
	tunnelAddress, err := AllocateTunnelAddress(index)
	if err != nil {
		return nil, err
	}

	gateway, err := o.newDevice(clientID, models.DeviceKindGateway, loc.Gateway, tunnelAddress)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateDevice(ctx, gateway); err != nil {
		return nil, deviceErr("gateway", gateway, err)
	}

	controllerAddress, err := deriveControllerAddress(tunnelAddress)
	if err != nil {
		return nil, err
	}
	controller, err := o.newDevice(clientID, models.DeviceKindController, loc.Controller, controllerAddress)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateDevice(ctx, controller); err != nil {
		return nil, deviceErr("controller", controller, err)
	}

	station := &models.Station{
		ID:              uuid.NewString(),
		ClientID:        clientID,
		Name:            loc.Station.Name,
		Location:        loc.Station.Location,
		TunnelAddress:   tunnelAddress,
		GatewayDeviceID: gateway.ID,
	}
	if err := tx.CreateStation(ctx, station); err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}

	var panels []models.Panel
	for _, desc := range loc.Panels {
		panel := models.Panel{
			ID:                 uuid.NewString(),
			StationID:          station.ID,
			Name:               desc.Name,
			GatewayDeviceID:    gateway.ID,
			ControllerDeviceID: controller.ID,
		}
		if err := tx.CreatePanel(ctx, &panel); err != nil {
			return nil, fmt.Errorf("create panel %q: %w", desc.Name, err)
		}
		panels = append(panels, panel)
	}

	return &models.ProvisionedLocation{
		Station:       *station,
		Gateway:       *gateway,
		Controller:    *controller,
		Panels:        panels,
		GatewayScript: RenderGatewayScript(gateway),
	}, nil
}

func (o *Orchestrator) newDevice(clientID string, kind models.DeviceKind, desc models.DeviceDescriptor, address string) (*models.Device, error) {
	admin, err := generatePassword(16)
	if err != nil {
		return nil, err
	}
	tunnel, err := generatePassword(24)
	if err != nil {
		return nil, err
	}
	wifi, err := generatePassword(12)
	if err != nil {
		return nil, err
	}
	return &models.Device{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		Kind:           kind,
		SerialNumber:   desc.SerialNumber,
		MACAddress:     desc.MACAddress,
		Address:        address,
		Status:         models.DeviceStatusConfigured,
		AdminPassword:  admin,
		TunnelPassword: tunnel,
		WiFiPassword:   wifi,
	}, nil
}

func deviceErr(role string, device *models.Device, err error) error {
	if errors.Is(err, models.ErrDuplicateIdentifier) {
		return fmt.Errorf("%s device serial %s / MAC %s: %w", role, device.SerialNumber, device.MACAddress, err)
	}
	return fmt.Errorf("create %s device %s: %w", role, device.SerialNumber, err)
}

func validateOrder(order *models.ProvisioningOrder) []string {
	var errs []string
	if order == nil {
		return []string{"order is required"}
	}
	if order.Client.CompanyName == "" {
		errs = append(errs, "client company name is required")
	}
	if len(order.Locations) == 0 {
		errs = append(errs, "order must contain at least one location")
	}
	if len(order.Locations) > MaxLocationsPerOrder {
		errs = append(errs, fmt.Sprintf("order exceeds %d locations", MaxLocationsPerOrder))
	}
	for i, loc := range order.Locations {
		if loc.Gateway.SerialNumber == "" || loc.Gateway.MACAddress == "" {
			errs = append(errs, fmt.Sprintf("location %d: gateway serial and MAC are required", i))
		}
		if loc.Controller.SerialNumber == "" || loc.Controller.MACAddress == "" {
			errs = append(errs, fmt.Sprintf("location %d: controller serial and MAC are required", i))
		}
		if len(loc.Panels) == 0 {
			errs = append(errs, fmt.Sprintf("location %d: at least one panel is required", i))
		}
	}
	return errs
}

func failure(errs ...string) *models.ProvisioningResult {
	return &models.ProvisioningResult{Errors: errs}
}
