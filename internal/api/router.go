package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/agriconnect/platform/internal/api/handler"
	"github.com/agriconnect/platform/internal/api/middleware"
	"github.com/agriconnect/platform/internal/core/datastore"
	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
	"github.com/agriconnect/platform/pkg/logger"
)

// RouterDeps carries everything the HTTP layer needs. The caller (main)
// owns construction and lifecycle of each dependency.
type RouterDeps struct {
	Store       *datastore.Store
	AuthService ports.AuthService
	Notifier    handler.Notifier
	Idempotency handler.IdempotencyChecker // nil disables request dedup
	Redis       *redis.Client              // nil when redis is not configured
	JWTSecret   string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("agriconnect"))

	// --- Dependencies ---
	gatewayHandler := handler.NewGatewayHandler(deps.Store, deps.Idempotency)
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Notifier)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/role", authHandler.SwitchRole, authMiddleware)

	// --- SQL gateway ---
	// GET /api/test answers without auth so clients can probe connectivity
	// before they hold a token.
	g := e.Group("/api")
	g.GET("/test", gatewayHandler.Test)
	g.POST("/query", gatewayHandler.Query, authMiddleware)
	g.POST("/run", gatewayHandler.Run, authMiddleware)
	g.POST("/execute", gatewayHandler.Execute, authMiddleware)

	// Destructive and whole-database operations are admin only.
	admin := g.Group("", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/script", gatewayHandler.Script)
	admin.GET("/snapshot", gatewayHandler.ExportSnapshot)
	admin.POST("/snapshot", gatewayHandler.ImportSnapshot)
	admin.POST("/reset", gatewayHandler.Reset)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Store, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
