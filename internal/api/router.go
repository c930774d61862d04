package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/stiarchives/portal/docs"
	"github.com/stiarchives/portal/internal/api/handler"
	"github.com/stiarchives/portal/internal/api/middleware"
	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
	"github.com/stiarchives/portal/internal/infrastructure/http/handlers"
)

// RouterDeps collects everything NewRouter wires into the Echo instance.
type RouterDeps struct {
	Lifecycle ports.LifecycleService
	Files     ports.FileStore

	// Auth is nil when the admin guard is disabled.
	Auth      ports.AuthService
	JWTSecret string

	Health map[string]handlers.Pinger
	Log    zerolog.Logger

	APIPrefix   string
	BodyLimit   string
	CORSOrigins []string

	// Defaults to the global Prometheus registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// routeRegistrar is satisfied by both *echo.Echo and *echo.Group.
type routeRegistrar interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	registerer := deps.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.MetricsGatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: corsOrigins(deps.CORSOrigins)}))
	if deps.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "sti_archives",
		Registerer: registerer,
	}))

	// --- Operational routes ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Lifecycle routes, mounted at the root and under the API prefix ---
	userHandler := handler.NewUserHandler(deps.Lifecycle, deps.Files, deps.Log)

	var adminGuard []echo.MiddlewareFunc
	var authHandler *handler.AuthHandler
	if deps.Auth != nil {
		adminGuard = []echo.MiddlewareFunc{middleware.Auth(deps.JWTSecret), middleware.RBAC(domain.RoleAdmin)}
		authHandler = handler.NewAuthHandler(deps.Auth)
	}

	registrars := []routeRegistrar{e}
	if deps.APIPrefix != "" && deps.APIPrefix != "/" {
		registrars = append(registrars, e.Group(deps.APIPrefix))
	}
	for _, r := range registrars {
		r.POST("/signup_user", userHandler.Signup)

		r.POST("/update_user_status", userHandler.UpdateStatus, adminGuard...)
		r.GET("/get_users", userHandler.List, adminGuard...)
		r.GET("/get_raf_file", userHandler.RafFile, adminGuard...)
		r.POST("/remove_user", userHandler.Remove, adminGuard...)
		r.POST("/send_welcome_email", userHandler.SendWelcomeEmail, adminGuard...)
		r.POST("/send_update_email", userHandler.SendUpdateEmail, adminGuard...)

		if authHandler != nil {
			r.POST("/admin/login", authHandler.Login)
		}
	}

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
