package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Tickets *handler.TicketHandler
	Tables  *handler.TableHandler
	Flyers  *handler.FlyerHandler
	Admin   *handler.AdminHandler
	Backend string
}

// Options configures the route middleware.  A nil Redis client disables
// rate limiting and the QR cache.
type Options struct {
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	JWTSecret string
	Gate      middleware.Gate
}

// RegisterRoutes mounts the health check and every /api route.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	e.GET("/healthz", handler.Health(h.Backend))

	api := e.Group("/api", middleware.AdminSession(opt.JWTSecret))
	limit := middleware.NewTokenBucket(opt.RateLimit, opt.Redis)

	// Issuance is public and rate limited.
	api.POST("/register", h.Tickets.Register, limit)
	api.GET("/register", h.Tickets.Lookup)
	api.POST("/purchases", h.Tickets.Purchase, limit)
	api.POST("/send-flyers", h.Flyers.Send, limit)

	// Door staff.
	api.POST("/validate", h.Tickets.Validate)
	api.GET("/qr/:id", h.Tickets.QR, middleware.NewRedisCache(opt.Cache, opt.Redis, h.Tickets.QRIssued))

	// Table administration sits behind the admin gate.
	tables := api.Group("/assign-table", middleware.RequireAdmin(opt.Gate))
	tables.GET("", h.Tables.List)
	tables.POST("", h.Tables.Assign)
	tables.POST("/group", h.Tables.AssignGroup)

	// The maintenance endpoint checks the key from its body itself.
	api.POST("/admin/session", h.Admin.Session, limit)
	api.POST("/admin/clear-data", h.Admin.ClearData)
}
