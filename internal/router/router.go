// Package router defines how HTTP routes are registered for the
// register API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pos-quick-sale/internal/config"
	"github.com/iliyamo/pos-quick-sale/internal/handler"
	"github.com/iliyamo/pos-quick-sale/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently that is only the health check, used by load balancers to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPOS registers the point-of-sale API under /v1.  Every route
// requires a valid operator JWT; all are rate limited, and the
// catalog reads additionally sit behind the redis response cache so a
// shop floor of registers does not hammer the backend with identical
// snapshot reads.
func RegisterPOS(e *echo.Echo, h *handler.POSHandler, jwtSecret string, rdb *redis.Client) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole("OPERATOR", "OWNER"))
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Catalog reads: cached.
	cached := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	v1.GET("/catalog", h.GetCatalog, cached)
	v1.GET("/catalog/resolve", h.ResolveQuery)
	v1.POST("/catalog/refresh", h.RefreshCatalog)

	// Keyboard selection over the last resolved match list.
	v1.POST("/selection/next", h.SelectionNext)
	v1.POST("/selection/prev", h.SelectionPrev)
	v1.DELETE("/selection", h.DismissSelection)

	// Ticket mutations and views.
	v1.GET("/ticket", h.GetTicket)
	v1.POST("/ticket/items", h.AddItem)
	v1.POST("/ticket/scan", h.Scan)
	v1.PUT("/ticket/items/:id", h.SetQuantity)
	v1.DELETE("/ticket/items/:id", h.RemoveItem)
	v1.DELETE("/ticket", h.ClearTicket)
	v1.PUT("/ticket/buyer", h.SetBuyer)

	// Tender preview and submission.
	v1.POST("/ticket/tender", h.EvaluateTender)
	v1.POST("/ticket/submit", h.Submit)
}
