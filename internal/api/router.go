package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/techfix/panel-gateway/internal/api/handler"
	"github.com/techfix/panel-gateway/internal/api/middleware"
	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
	"github.com/techfix/panel-gateway/internal/guard"
	"github.com/techfix/panel-gateway/internal/infrastructure/http/handlers"
)

// Deps collects everything the router needs. Redis may be nil when sessions
// run on the in-memory backend; the readiness probe reports it as skipped.
type Deps struct {
	Manager ports.SessionManager
	Users   ports.UserAPI
	Catalog ports.CatalogAPI
	Repairs ports.RepairAPI

	Redis    *redis.Client
	Upstream handlers.Pinger

	CookieName   string
	SecureCookie bool
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Manager, d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("techfix"))
	e.Use(middleware.Session(d.Manager, d.CookieName))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Manager, d.CookieName, d.SecureCookie)
	userHandler := handler.NewUserHandler(d.Users)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	repairHandler := handler.NewRepairHandler(d.Repairs)
	exportHandler := handler.NewExportHandler(d.Catalog, d.Repairs)

	// --- Auth routes (public) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)

	// --- Guarded resource groups ---
	staff := []domain.Role{domain.RoleAdmin, domain.RoleReceptionist, domain.RoleTechnician}

	users := e.Group("/api/users", middleware.Guard(guard.Roles(domain.RoleAdmin)))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	customers := e.Group("/api/customers",
		middleware.Guard(guard.Roles(domain.RoleAdmin, domain.RoleReceptionist)))
	customers.GET("", catalogHandler.ListCustomers)
	customers.POST("", catalogHandler.CreateCustomer)
	customers.GET("/export.pdf", exportHandler.CustomersPDF)
	customers.GET("/:id", catalogHandler.GetCustomer)
	customers.PUT("/:id", catalogHandler.UpdateCustomer)
	customers.DELETE("/:id", catalogHandler.DeleteCustomer)

	devices := e.Group("/api/devices", middleware.Guard(guard.Roles(staff...)))
	devices.GET("", catalogHandler.ListDevices)
	devices.POST("", catalogHandler.CreateDevice)
	devices.GET("/:id", catalogHandler.GetDevice)
	devices.GET("/:id/history", catalogHandler.DeviceHistory)
	devices.PUT("/:id", catalogHandler.UpdateDevice)
	devices.DELETE("/:id", catalogHandler.DeleteDevice)

	catalogGuard := middleware.Guard(guard.Roles(staff...))
	e.GET("/api/brands", catalogHandler.ListBrands, catalogGuard)
	e.GET("/api/device-models", catalogHandler.ListDeviceModels, catalogGuard)

	orders := e.Group("/api/repair-orders", middleware.Guard(guard.Roles(staff...)))
	orders.GET("", repairHandler.ListOrders)
	orders.POST("", repairHandler.CreateOrder)
	orders.GET("/export.pdf", exportHandler.OrdersPDF)
	orders.GET("/:id", repairHandler.GetOrder)
	orders.PUT("/:id", repairHandler.UpdateOrder)
	orders.PATCH("/:id/status", repairHandler.UpdateOrderStatus)
	orders.DELETE("/:id", repairHandler.DeleteOrder)

	// Customers may list their own orders; the handler enforces ownership.
	e.GET("/api/repair-orders/customer/:id", repairHandler.OrdersByCustomer,
		middleware.Guard(guard.Roles(append(staff, domain.RoleCustomer)...)))

	tasks := e.Group("/api/repair-tasks",
		middleware.Guard(guard.Roles(domain.RoleAdmin, domain.RoleTechnician)))
	tasks.GET("", repairHandler.ListTasks)
	tasks.POST("", repairHandler.CreateTask)
	tasks.GET("/:id", repairHandler.GetTask)
	tasks.GET("/:id/report.pdf", exportHandler.RepairReportPDF)
	tasks.PUT("/:id", repairHandler.UpdateTask)
	tasks.DELETE("/:id", repairHandler.DeleteTask)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Redis, d.Upstream)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
