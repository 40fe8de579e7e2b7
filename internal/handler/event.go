package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/model"
)

// EventHandler exposes event creation and the read-only event
// projections consumed by the presentation layer.
type EventHandler struct {
	Ledger *ledger.Ledger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(l *ledger.Ledger) *EventHandler {
	if l == nil {
		panic("nil ledger passed to NewEventHandler")
	}
	return &EventHandler{Ledger: l}
}

type createEventReq struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Date         int64  `json:"date"`
	PriceWei     string `json:"price_wei"`
	TicketSupply uint32 `json:"ticket_supply"`
	IsTokenGated bool   `json:"is_token_gated"`
	GateToken    string `json:"gate_token"`
	MetadataHash string `json:"metadata_hash"`
}

// eventView is the display projection of an event: the price is a
// decimal string (wei amounts exceed what JSON numbers represent
// exactly) and the date is a numeric string of Unix seconds.
type eventView struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	PriceWei     string `json:"price_wei"`
	TicketSupply uint32 `json:"ticket_supply"`
	TicketsSold  uint32 `json:"tickets_sold"`
	Organizer    string `json:"organizer"`
	IsTokenGated bool   `json:"is_token_gated"`
	GateToken    string `json:"gate_token,omitempty"`
	MetadataHash string `json:"metadata_hash,omitempty"`
}

func viewOf(ev *model.Event) eventView {
	return eventView{
		ID:           ev.ID,
		Name:         ev.Name,
		Description:  ev.Description,
		Date:         strconv.FormatInt(ev.Date, 10),
		PriceWei:     strconv.FormatUint(ev.PriceWei, 10),
		TicketSupply: ev.TicketSupply,
		TicketsSold:  ev.TicketsSold,
		Organizer:    ev.Organizer,
		IsTokenGated: ev.IsTokenGated,
		GateToken:    ev.GateToken,
		MetadataHash: ev.MetadataHash,
	}
}

// Create handles POST /v1/events.  The authenticated caller becomes the
// event's organizer.
func (h *EventHandler) Create(c echo.Context) error {
	organizer, err := callerAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var priceWei uint64
	if req.PriceWei != "" {
		priceWei, err = strconv.ParseUint(req.PriceWei, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_wei must be a decimal string"})
		}
	}

	ev, err := h.Ledger.CreateEvent(c.Request().Context(), ledger.CreateEventParams{
		Name:         req.Name,
		Description:  req.Description,
		Date:         req.Date,
		PriceWei:     priceWei,
		TicketSupply: req.TicketSupply,
		IsTokenGated: req.IsTokenGated,
		GateToken:    req.GateToken,
		MetadataHash: req.MetadataHash,
		Organizer:    organizer,
	})
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(ev))
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ev, err := h.Ledger.GetEvent(c.Request().Context(), id)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(ev))
}

// List handles GET /v1/events, returning all events in creation order.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Ledger.ListEvents(c.Request().Context())
	if err != nil {
		return ledgerError(c, err)
	}
	views := make([]eventView, len(events))
	for i := range events {
		views[i] = viewOf(&events[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"events": views})
}

// Count handles GET /v1/events/count.
func (h *EventHandler) Count(c echo.Context) error {
	n, err := h.Ledger.EventCount(c.Request().Context())
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// ByOrganizer handles GET /v1/accounts/:address/events, the organizer
// dashboard listing.
func (h *EventHandler) ByOrganizer(c echo.Context) error {
	events, err := h.Ledger.ListEventsByOrganizer(c.Request().Context(), c.Param("address"))
	if err != nil {
		return ledgerError(c, err)
	}
	views := make([]eventView, len(events))
	for i := range events {
		views[i] = viewOf(&events[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"events": views})
}
