package app

import (
	"context"
	"database/sql"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "pumpsign/backend/libs/db"
	libredis "pumpsign/backend/libs/redis"
	"pumpsign/backend/services/fleet-service/internal/config"
	httpserver "pumpsign/backend/services/fleet-service/internal/http"
	"pumpsign/backend/services/fleet-service/internal/http/handlers"
	"pumpsign/backend/services/fleet-service/internal/monitor"
	"pumpsign/backend/services/fleet-service/internal/provisioning"
	"pumpsign/backend/services/fleet-service/internal/redisstore"
	"pumpsign/backend/services/fleet-service/internal/repository"
	"pumpsign/backend/services/fleet-service/internal/service"
	"pumpsign/backend/services/fleet-service/internal/transport"
	"pumpsign/backend/services/fleet-service/internal/ws"
)

const statusCacheTTL = 24 * time.Hour

// App wires all dependencies for the fleet service.
type App struct {
	httpServer *httpserver.Server
	db         *sql.DB
	redis      *goredis.Client
	store      *repository.Store
	fleet      *monitor.Monitor
	logger     *zap.Logger
}

// storeAdapter narrows the repository to the orchestrator's contract.
type storeAdapter struct {
	store *repository.Store
}

func (a storeAdapter) Begin(ctx context.Context) (provisioning.Tx, error) {
	return a.store.Begin(ctx)
}

// New builds the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	store := repository.NewStore(sqlDB)

	fleet := monitor.New(
		&monitor.PingProber{Timeout: cfg.PingTimeout()},
		monitor.Config{
			Interval:         cfg.HeartbeatInterval(),
			FailureThreshold: cfg.Monitor.FailureThreshold,
			ProbeTimeout:     cfg.PingTimeout(),
		},
		logger,
	)

	hub := ws.NewHub(logger)
	feedServer := ws.NewServer(hub, 15*time.Second, logger)

	var redisClient *goredis.Client
	var statusStore *redisstore.StatusStore
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		statusStore = redisstore.NewStatusStore(redisClient, statusCacheTTL)
	}

	fleet.OnTransition(func(stationID string, status monitor.ConnectionStatus) {
		hub.Broadcast(ws.StatusEvent{StationID: stationID, Status: status})
		if statusStore != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := statusStore.Save(ctx, stationID, status); err != nil {
				logger.Warn("failed to cache station status",
					zap.String("station_id", stationID), zap.Error(err))
			}
		}
	})

	sender := transport.NewSender(transport.Config{
		DevicePort:      cfg.Device.Port,
		ConnectTimeout:  cfg.ConnectTimeout(),
		ResponseTimeout: cfg.ResponseTimeout(),
	}, fleet, logger)

	orchestrator := provisioning.NewOrchestrator(
		storeAdapter{store: store},
		provisioning.Config{APIURL: cfg.Provisioning.APIURL},
		logger,
	)
	pairTester := provisioning.NewPairTester(
		&monitor.PingProber{Timeout: cfg.PingTimeout()},
		sender,
		cfg.Device.Port,
		logger,
	)

	priceService := service.NewPriceService(store, sender, logger)

	router := httpserver.NewRouter(httpserver.Routes{
		ProvisionOrder: handlers.NewProvisionHandler(orchestrator, fleet, logger),
		PairTest:       handlers.NewPairTestHandler(pairTester),
		UpdatePrices:   handlers.NewPriceHandler(priceService),
		FleetStatus:    handlers.NewFleetStatusHandler(fleet),
		StationStatus:  handlers.NewStationStatusHandler(fleet),
		FleetFeed:      feedServer.HandleWS,
		Health:         handlers.NewHealthHandler(),
	})

	return &App{
		httpServer: httpserver.NewServer(cfg.HTTPAddress(), router, logger),
		db:         sqlDB,
		redis:      redisClient,
		store:      store,
		fleet:      fleet,
		logger:     logger,
	}, nil
}

// Run seeds monitoring from persisted stations and serves HTTP until the
// context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.seedMonitoring(ctx); err != nil {
		return err
	}
	return a.httpServer.Run(ctx)
}

func (a *App) seedMonitoring(ctx context.Context) error {
	stations, err := a.store.ListStations(ctx)
	if err != nil {
		return err
	}
	for _, station := range stations {
		a.fleet.StartMonitoring(station.ID, station.TunnelAddress)
	}
	a.logger.Info("monitoring seeded", zap.Int("stations", len(stations)))
	return nil
}

// Close releases resources.
func (a *App) Close() {
	a.fleet.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
