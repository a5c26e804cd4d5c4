package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/naijalogix/shipment-tracker/docs"
	"github.com/naijalogix/shipment-tracker/internal/api/handler"
	"github.com/naijalogix/shipment-tracker/internal/api/middleware"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
	"github.com/naijalogix/shipment-tracker/internal/infrastructure/push"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string
	// TrackRateLimit is requests per second per client on the public
	// tracking routes. Zero disables the limiter.
	TrackRateLimit float64

	Auth          ports.AuthService
	Shipments     ports.ShipmentService
	Notifications ports.NotificationService
	Dispatcher    handler.EventDispatcher
	Hub           *push.Hub
	HealthChecks  map[string]handler.PingFunc

	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORS())
	e.Use(httpMetrics(d.Registry))

	authMW := middleware.Auth(d.JWTSecret)
	adminOnly := middleware.AdminOnly()

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/profile", authHandler.Profile, authMW)

	// --- Shipments ---
	shipmentHandler := handler.NewShipmentHandler(d.Shipments)
	shipments := e.Group("/shipments")
	shipments.POST("", shipmentHandler.Create, authMW)
	shipments.GET("", shipmentHandler.List, authMW, adminOnly)
	shipments.GET("/mine", shipmentHandler.Mine, authMW)

	track := shipments.Group("/track")
	if d.TrackRateLimit > 0 {
		track.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(d.TrackRateLimit))))
	}
	track.GET("/:tracking_number", shipmentHandler.Track)
	track.GET("/:tracking_number/route", shipmentHandler.Route)

	// --- Events ---
	eventHandler := handler.NewEventHandler(d.Dispatcher)
	events := e.Group("/events", authMW, adminOnly)
	events.POST("", eventHandler.Receive)
	events.POST("/batch", eventHandler.ReceiveBatch)

	// --- Notifications ---
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	notifications := e.Group("/notification", authMW)
	notifications.GET("", notificationHandler.List)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)

	if d.Hub != nil {
		e.GET("/ws", d.Hub.ServeWS)
	}

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	// --- Ops ---
	if d.Registry != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	} else {
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func httpMetrics(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{Namespace: "tracker", Subsystem: "http"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
