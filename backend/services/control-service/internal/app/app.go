package app

import (
	"context"
	"database/sql"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "roomcontrol/backend/libs/db"
	libmqtt "roomcontrol/backend/libs/mqtt"
	libredis "roomcontrol/backend/libs/redis"
	"roomcontrol/backend/services/control-service/internal/config"
	httpserver "roomcontrol/backend/services/control-service/internal/http"
	"roomcontrol/backend/services/control-service/internal/http/handlers"
	"roomcontrol/backend/services/control-service/internal/models"
	redisstore "roomcontrol/backend/services/control-service/internal/redis"
	"roomcontrol/backend/services/control-service/internal/repository"
	"roomcontrol/backend/services/control-service/internal/service"
	"roomcontrol/backend/services/control-service/internal/transport"
	"roomcontrol/backend/services/control-service/internal/ws"
)

// Mode selects which parts of the graph are active.
type Mode int

const (
	// ModeServe ingests telemetry, runs the scheduler and serves HTTP.
	ModeServe Mode = iota
	// ModeCycle only runs a single control cycle; nothing is subscribed.
	ModeCycle
)

// App wires control-service dependencies.
type App struct {
	server      *httpserver.Server
	source      *transport.Source
	ingestor    *service.Ingestor
	scheduler   *service.Scheduler
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  paho.Client
	stopWS      context.CancelFunc
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger, mode Mode) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN, libdb.PoolOptions{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(libredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	source := transport.NewSource(cfg.MQTT.SubscribeTopic, cfg.QoS(), cfg.Ingest.QueueSize, logger.Named("mqtt"))
	mqttOpts := libmqtt.Options{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
	}
	if mode == ModeServe {
		mqttOpts.OnConnect = source.Subscribe
	}
	mqttClient, err := libmqtt.NewClient(mqttOpts, logger.Named("mqtt"))
	if err != nil {
		redisClient.Close()
		sqlDB.Close()
		return nil, err
	}

	readingRepo := repository.NewReadingRepository(sqlDB)
	deviceRepo := repository.NewDeviceRepository(sqlDB)
	settingRepo := repository.NewRoomSettingRepository(sqlDB)
	statusStore := redisstore.NewDeviceStateStore(redisClient, cfg.StatusTTL())

	hub := ws.NewHub(cfg.PingInterval(), cfg.WriteTimeout(), logger.Named("ws"))
	cycleOpts := service.CycleOptions{Events: hub}
	if cfg.Audit.Enabled {
		cycleOpts.Audit = repository.NewAuditRepository(sqlDB)
	}
	if cfg.Control.DistributedLock {
		cycleOpts.Lock = redisstore.NewCycleLock(redisClient, cfg.CycleTimeout())
	}

	publisher := transport.NewPublisher(mqttClient, cfg.QoS(), cfg.PublishTimeout())
	cycle := service.NewCycle(
		service.NewAggregator(readingRepo, cfg.Freshness()),
		service.NewEvaluator(settingRepo),
		service.NewDispatcher(deviceRepo, publisher, logger.Named("dispatcher")),
		cycleOpts,
		logger.Named("cycle"),
	)
	scheduler := service.NewScheduler(cycle, cfg.Interval(), cfg.CycleTimeout(), service.NewStateTracker(), logger.Named("scheduler"))
	ingestor := service.NewIngestor(readingRepo, deviceRepo, statusStore, cfg.Ingest.StoreReadings, logger.Named("ingestor"))

	wsCtx, stopWS := context.WithCancel(context.Background())
	wsServer := ws.NewServer(wsCtx, hub, logger.Named("ws"))

	routes := httpserver.Routes{
		Health:       handlers.NewHealthHandler(),
		ControlState: handlers.NewControlStateHandler(scheduler.State()),
		DeviceStatus: handlers.NewDeviceStatusHandler(statusStore, logger),
		Events:       wsServer.HandleWS,
	}
	server := httpserver.NewServer(cfg.HTTPAddress(), httpserver.NewRouter(routes), logger)

	return &App{
		server:      server,
		source:      source,
		ingestor:    ingestor,
		scheduler:   scheduler,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		stopWS:      stopWS,
		logger:      logger,
	}, nil
}

// Run starts ingestion, the control scheduler, the event hub and the HTTP server. It
// returns once ctx is cancelled or the HTTP server fails, after background loops exit.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.ingestor.Run(ctx, a.source.Messages())
	}()
	go func() {
		defer wg.Done()
		a.scheduler.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.hub.Start(ctx)
	}()

	err := a.server.Run(ctx)
	cancel()
	a.stopWS()
	wg.Wait()
	return err
}

// RunCycle executes one control cycle and returns its report.
func (a *App) RunCycle(ctx context.Context) (models.CycleReport, error) {
	return a.scheduler.RunCycle(ctx)
}

// Close releases resources.
func (a *App) Close() {
	a.stopWS()
	libmqtt.Disconnect(a.mqttClient)
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
