package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/gNutty/vesselradar/config"
	"github.com/gNutty/vesselradar/pkg/ais"
	"github.com/gNutty/vesselradar/pkg/batchsync"
	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/gNutty/vesselradar/pkg/httpclient"
	"github.com/gNutty/vesselradar/pkg/kafka"
	"github.com/gNutty/vesselradar/pkg/lookup"
	"github.com/gNutty/vesselradar/pkg/models"
	"github.com/gNutty/vesselradar/pkg/ratelimit"
	"github.com/gNutty/vesselradar/pkg/redis"
	"github.com/gNutty/vesselradar/pkg/repositories"
	"github.com/gNutty/vesselradar/pkg/startup"
	"github.com/gNutty/vesselradar/pkg/tracing"
	"github.com/gNutty/vesselradar/pkg/tracking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type publisher interface {
	tracking.EventPublisher
	PublishSyncCompleted(ctx context.Context, report *models.SyncReport) error
	Close() error
}

// app holds everything the commands share once dependencies are up.
type app struct {
	cfg     *config.Config
	logger  ectologger.Logger
	startup *startup.Startup

	db     *database.DatabaseInstance
	redis  *redis.Client
	events publisher

	tables     *lookup.Tables
	shipments  *repositories.ShipmentRepository
	positions  *repositories.PositionRepository
	identities *repositories.VesselIdentityRepository

	locationResolver *tracking.LocationResolver
	identityResolver *tracking.IdentityResolver
	syncer           *batchsync.Syncer

	shutdownTracing func(context.Context) error
}

func loadConfig(envFile string) (*config.Config, ectologger.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) (ectologger.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		User:            cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}
}

func migrate(cfg *config.Config, db *database.DatabaseInstance, logger ectologger.Logger) error {
	return database.NewMigrationService(logger, database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             cfg.DatabaseMigrationVersion,
		Force:               cfg.DatabaseMigrationForce,
	}).Migrate(db.DB.DB, cfg.DatabaseName)
}

// newApp starts the database and redis with retries and builds the resolvers.
func newApp(ctx context.Context, cfg *config.Config, logger ectologger.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		startup: startup.New(logger, cfg.StartupMaxAttempts),
	}

	shutdownTracing, err := tracing.Setup(ctx, tracing.OTLPConfig{
		Enabled:     cfg.OTLPEnabled,
		ServiceName: cfg.AppName,
		Endpoint:    cfg.OTLPEndpoint,
		Protocol:    cfg.OTLPProtocol,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	a.shutdownTracing = shutdownTracing

	a.startup.Add(startup.NewDependency("database",
		func(ctx context.Context) error {
			db, err := database.Open(ctx, databaseConfig(cfg), logger)
			if err != nil {
				return err
			}
			if cfg.DatabaseMigrateOnStart {
				if err := migrate(cfg, db, logger); err != nil {
					_ = db.Close()
					return err
				}
			}
			a.db = db
			return nil
		},
		func(context.Context) error { return a.db.Close() },
	))
	a.startup.Add(startup.NewDependency("redis",
		func(ctx context.Context) error {
			client, err := redis.Connect(ctx, redis.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, logger)
			if err != nil {
				return err
			}
			a.redis = client
			return nil
		},
		func(context.Context) error { return a.redis.Close() },
	))
	if err := a.startup.Start(ctx); err != nil {
		return nil, err
	}

	if a.tables, err = lookup.Load(cfg.LookupTablesPath); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.events = kafka.Noop{}
	if cfg.KafkaEnabled {
		a.events = kafka.NewProducer(kafka.Config{
			Brokers:       kafka.ParseBrokers(cfg.KafkaBrokers...),
			PositionTopic: cfg.KafkaPositionTopic,
			SyncTopic:     cfg.KafkaSyncTopic,
		}, logger)
	}

	a.shipments = repositories.NewShipmentRepository(a.db, logger)
	a.positions = repositories.NewPositionRepository(a.db, logger)
	a.identities = repositories.NewVesselIdentityRepository(a.db, logger)

	remote := a.newAISClient()
	policy := tracking.Policy{
		NormalTTL:     cfg.LocationCacheTTL,
		MinRefreshAge: cfg.LocationMinRefreshAge,
		RemoteTimeout: cfg.AISTimeout,
	}
	a.locationResolver = tracking.NewLocationResolver(a.positions, remote, a.tables, policy, logger, tracking.WithEvents(a.events))
	a.identityResolver = tracking.NewIdentityResolver(a.identities, remote, a.tables, logger, tracking.WithSearchTimeout(cfg.AISTimeout))
	a.syncer = batchsync.NewSyncer(a.shipments, a.locationResolver, a.events, logger)

	if !remote.HasCredentials() {
		logger.Warn("RAPIDAPI_KEY is not set: locations come from the store and fallback table only, identity search is unavailable")
	}
	return a, nil
}

func (a *app) newAISClient() *ais.Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxResponseSize = a.cfg.AISMaxResponseBytes

	var limiter ais.Limiter
	if a.cfg.AISRateLimitEnabled {
		limiter = ratelimit.NewGuard(redis.NewQuotaWindow(a.redis, "quota:"), ratelimit.Config{
			Name:     a.cfg.AISHost,
			Requests: a.cfg.AISRateLimitRequests,
			Window:   a.cfg.AISRateLimitWindow,
		}, a.logger)
	}

	return ais.NewClient(httpclient.NewClient(httpCfg, a.logger), ais.Config{
		BaseURL: a.cfg.AISBaseURL,
		Host:    a.cfg.AISHost,
		APIKey:  a.cfg.AISAPIKey,
		Timeout: a.cfg.AISTimeout,
	}, limiter, a.logger)
}

// Close releases everything newApp acquired, in reverse order.
func (a *app) Close(ctx context.Context) error {
	var firstErr error
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.startup.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
