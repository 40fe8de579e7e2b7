package router // groups route registration for the HTTP server

import (
	"github.com/labstack/echo/v4"

	"github.com/mintgate/event-platform/internal/handler"
	"github.com/mintgate/event-platform/internal/middleware"
)

// RegisterRoutes wires the endpoints that need no other collaborators.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires registration, login and session management.  Only
// /me sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)

	e.GET("/v1/me", h.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic wires the read-only ledger projections.  They need no
// authentication; extra middleware (e.g. a response cache) is applied
// to the whole group.
func RegisterPublic(e *echo.Echo, events *handler.EventHandler, tickets *handler.TicketHandler, wl *handler.WhitelistHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)

	g.GET("/events", events.List)
	g.GET("/events/count", events.Count)
	g.GET("/events/:id", events.Get)
	g.GET("/events/:id/whitelist/:address", wl.Check)

	g.GET("/tickets/:tokenId/owner", tickets.OwnerOf)

	g.GET("/accounts/:address/balance", tickets.Balance)
	g.GET("/accounts/:address/tickets", tickets.Owned)
	g.GET("/accounts/:address/events", events.ByOrganizer)
}

// RegisterProtected wires the mutating ledger endpoints behind JWT
// authentication.  The wallet address from the token is the caller
// identity for every operation here.
func RegisterProtected(e *echo.Echo, events *handler.EventHandler, tickets *handler.TicketHandler, wl *handler.WhitelistHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/events", events.Create)
	g.POST("/events/:id/purchase", tickets.Purchase)
	g.POST("/tickets/:tokenId/transfer", tickets.Transfer)
	g.POST("/events/:id/whitelist", wl.Add)
	g.DELETE("/events/:id/whitelist", wl.Remove)
}
