// @title                       Shipment Tracker API
// @version                     1.0
// @description                 Shipment creation, public tracking and live status notifications.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naijalogix/shipment-tracker/internal/api"
	"github.com/naijalogix/shipment-tracker/internal/api/handler"
	"github.com/naijalogix/shipment-tracker/internal/api/middleware"
	"github.com/naijalogix/shipment-tracker/internal/core/service"
	"github.com/naijalogix/shipment-tracker/internal/infrastructure/amqp"
	mongodb "github.com/naijalogix/shipment-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/naijalogix/shipment-tracker/internal/infrastructure/db/redis"
	"github.com/naijalogix/shipment-tracker/internal/infrastructure/push"
	"github.com/naijalogix/shipment-tracker/internal/infrastructure/queue"
	"github.com/naijalogix/shipment-tracker/internal/pkg/config"
	"github.com/naijalogix/shipment-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "tracker-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "tracker-api",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// --- Repositories ---
	shipmentRepo := mongodb.NewShipmentRepository(db)
	authRepo := mongodb.NewAuthRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	eventRepo := mongodb.NewEventRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"shipments":     shipmentRepo.EnsureIndexes,
		"users":         authRepo.EnsureIndexes,
		"notifications": notificationRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("failed to ensure indexes")
		}
	}

	// --- Services ---
	notifications := service.NewNotificationService(notificationRepo, redisdb.NewNotificationPublisher(rdb, cfg.Redis.NotifyChannel), log)
	shipments := service.NewShipmentService(shipmentRepo, notifications, log)
	events := service.NewEventService(shipmentRepo, eventRepo, redisdb.NewDedupChecker(rdb), notifications, log)
	auth := service.NewAuthService(authRepo, cfg.JWTSecret, cfg.TokenTTL)

	dispatcher := queue.NewDispatcher(cfg.Workers, events, logger.Named("dispatcher"))
	dispatcher.Start(ctx)

	hub := push.NewHub(func(token string) (push.Identity, error) {
		claims, err := middleware.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			return push.Identity{}, err
		}
		return push.Identity{UserID: claims.UserID, Role: claims.Role}, nil
	}, logger.Named("push"))

	e := api.NewRouter(api.Deps{
		Log:            log,
		JWTSecret:      cfg.JWTSecret,
		TrackRateLimit: cfg.TrackRateLimit,
		Auth:           auth,
		Shipments:      shipments,
		Notifications:  notifications,
		Dispatcher:     dispatcher,
		Hub:            hub,
		HealthChecks: map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Every instance relays the shared channel into its own websocket rooms.
	g.Go(func() error {
		return redisdb.Subscribe(gctx, rdb, cfg.Redis.NotifyChannel, log, hub.Deliver)
	})

	if cfg.AMQP.URL != "" {
		consumer := amqp.NewConsumer(amqp.Config{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
			Queue:    cfg.AMQP.Queue,
		}, dispatcher, logger.Named("amqp"))
		g.Go(func() error { return consumer.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
	stop()
	dispatcher.Wait()
}
