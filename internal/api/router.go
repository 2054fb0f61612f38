package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/api/handler"
	"github.com/inventory-platform/inventory-api/internal/api/middleware"
	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Verifier ports.TokenVerifier
	Users    ports.UserService
	Roles    ports.RoleService
	Audit    ports.AuditRecorder
	Checks   map[string]handler.DependencyCheck

	// Registerer and Gatherer back the HTTP metrics and GET /metrics. They
	// default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "inventory",
		Registerer: d.Registerer,
	}))

	// --- Dependencies ---
	authn := middleware.NewAuthenticator(d.Verifier, d.Log)
	gate := middleware.NewGate(d.Audit)
	authHandler := handler.NewAuthHandler(d.Auth)
	roleHandler := handler.NewRoleHandler(d.Roles)
	userHandler := handler.NewUserHandler(d.Users)

	// --- Auth routes ---
	e.POST("/login", authHandler.Login)
	e.GET("/me", authHandler.Me, authn.Required())

	// --- Role registry ---
	e.GET("/permissions", roleHandler.Permissions, authn.Optional())
	e.GET("/roles", roleHandler.List, authn.Optional())
	e.GET("/roles/:name", roleHandler.Get, authn.Optional())

	admin := e.Group("/roles", authn.Required(), gate.RequirePermission(domain.PermAdminAccess))
	admin.POST("", roleHandler.Create)
	admin.PUT("/:name", roleHandler.Update)
	admin.DELETE("/:name", roleHandler.Delete)

	// --- User management ---
	// Single-user routes apply the self-service rules in the service layer.
	users := e.Group("/user-management", authn.Required())
	users.GET("", userHandler.List, gate.RequirePermission(domain.PermReadUsers))
	users.POST("", userHandler.Create, gate.RequirePermission(domain.PermWriteUsers))
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))

	return e
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
