package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gNutty/vesselradar/internal/handlers"
	"github.com/gNutty/vesselradar/pkg/health"
	"github.com/gNutty/vesselradar/pkg/middleware"
	"github.com/gNutty/vesselradar/pkg/redis"
	"github.com/gNutty/vesselradar/pkg/scheduler"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the sync scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			e, checker, err := a.newServer(ctx)
			if err != nil {
				_ = a.Close(context.WithoutCancel(ctx))
				return err
			}

			var sched *scheduler.Scheduler
			if cfg.SyncEnabled {
				sched = scheduler.NewScheduler(a.syncer, redis.NewLocker(a.redis, "lock:"), scheduler.Config{
					Interval:   cfg.SyncInterval,
					LockTTL:    cfg.SyncLockTTL,
					RunOnStart: cfg.SyncRunOnStart,
				}, logger)
				if err := sched.Start(ctx); err != nil {
					_ = a.Close(context.WithoutCancel(ctx))
					return err
				}
			}

			serverErr := make(chan error, 1)
			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				logger.Infof("Listening on %s", addr)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
				close(serverErr)
			}()
			checker.SetReady(true)

			select {
			case <-ctx.Done():
				logger.Info("Shutdown signal received")
			case err = <-serverErr:
				logger.WithError(err).Error("HTTP server stopped unexpectedly")
			}
			checker.SetReady(false)

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if sched != nil {
				_ = sched.Stop(shutdownCtx)
			}
			if serr := e.Shutdown(shutdownCtx); serr != nil {
				logger.WithError(serr).Warn("HTTP server shutdown failed")
			}
			if cerr := a.Close(shutdownCtx); cerr != nil {
				logger.WithError(cerr).Warn("Failed to release dependencies")
			}
			return err
		},
	}
}

func (a *app) newServer(ctx context.Context) (*echo.Echo, *health.Checker, error) {
	cfg := a.cfg

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.logger)
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.AllowOrigins}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.AccessLog(a.logger, "/api/v1/health", "/metrics"))

	checker := health.NewChecker(cfg.AppName).
		AddCheck("database", a.db.PingContext).
		AddOptionalCheck("redis", a.redis.Ping)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	if cfg.AuthEnabled {
		verifier, err := middleware.NewOIDCVerifier(ctx, cfg.AuthIssuerURL, cfg.AuthClientID)
		if err != nil {
			return nil, nil, fmt.Errorf("create OIDC verifier: %w", err)
		}
		api.Use(middleware.Authentication(a.logger, verifier))
	}

	handlers.Handlers{
		Vessels:   handlers.NewVesselHandler(a.locationResolver, a.identityResolver, a.logger),
		Tracking:  handlers.NewTrackingHandler(a.syncer, a.logger),
		Shipments: handlers.NewShipmentHandler(a.shipments, a.positions, a.tables, a.logger),
	}.Register(api)

	return e, checker, nil
}
