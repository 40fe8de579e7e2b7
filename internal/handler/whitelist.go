package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mintgate/event-platform/internal/ledger"
)

// WhitelistHandler manages per-event access whitelists.  Only the
// event's organizer may edit a whitelist; reads are public so wallets
// can check their access before attempting a purchase.
type WhitelistHandler struct {
	Ledger *ledger.Ledger
}

// NewWhitelistHandler constructs a WhitelistHandler.
func NewWhitelistHandler(l *ledger.Ledger) *WhitelistHandler {
	if l == nil {
		panic("nil ledger passed to NewWhitelistHandler")
	}
	return &WhitelistHandler{Ledger: l}
}

type whitelistReq struct {
	Addresses []string `json:"addresses"`
}

// Add handles POST /v1/events/:id/whitelist.
func (h *WhitelistHandler) Add(c echo.Context) error {
	caller, err := callerAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req whitelistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Ledger.AddToWhitelist(c.Request().Context(), eventID, caller, req.Addresses); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "added": len(req.Addresses)})
}

// Remove handles DELETE /v1/events/:id/whitelist.  Removing an address
// that is not on the list is a no-op.
func (h *WhitelistHandler) Remove(c echo.Context) error {
	caller, err := callerAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req whitelistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Ledger.RemoveFromWhitelist(c.Request().Context(), eventID, caller, req.Addresses); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "removed": len(req.Addresses)})
}

// Check handles GET /v1/events/:id/whitelist/:address.
func (h *WhitelistHandler) Check(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ok, err := h.Ledger.IsWhitelisted(c.Request().Context(), eventID, c.Param("address"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":    eventID,
		"address":     c.Param("address"),
		"whitelisted": ok,
	})
}
