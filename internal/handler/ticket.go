package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/queue"
	queue_publisher "github.com/mintgate/event-platform/internal/service"
)

// TicketHandler exposes ticket purchase, transfer and the read-only
// ownership queries.  Purchases and transfers are atomic in the ledger;
// the broker notification happens only after the commit and a publish
// failure never affects the committed result.
type TicketHandler struct {
	Ledger *ledger.Ledger
	// Publish toggles broker notifications; tests leave it false.
	Publish bool
}

// NewTicketHandler constructs a TicketHandler that publishes broker
// notifications.
func NewTicketHandler(l *ledger.Ledger) *TicketHandler {
	if l == nil {
		panic("nil ledger passed to NewTicketHandler")
	}
	return &TicketHandler{Ledger: l, Publish: true}
}

type purchaseReq struct {
	PaymentWei string `json:"payment_wei"`
	Quantity   uint32 `json:"quantity"`
}

type transferReq struct {
	To string `json:"to"`
}

// Purchase handles POST /v1/events/:id/purchase.  The authenticated
// caller is the buyer; quantity defaults to 1.  The payment amount is
// validated upstream by the settlement collaborator and arrives here as
// a plain wei amount.
func (h *TicketHandler) Purchase(c echo.Context) error {
	buyer, err := callerAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	paymentWei, err := strconv.ParseUint(req.PaymentWei, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_wei must be a decimal string"})
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	ctx := c.Request().Context()
	tokenIDs, err := h.Ledger.Purchase(ctx, eventID, buyer, paymentWei, quantity)
	if err != nil {
		return ledgerError(c, err)
	}

	if h.Publish {
		name := ""
		if ev, gerr := h.Ledger.GetEvent(ctx, eventID); gerr == nil {
			name = ev.Name
		}
		_ = queue_publisher.PublishTicketPurchased(ctx, queue.TicketPurchasedEvent{
			TokenIDs:    tokenIDs,
			EventID:     eventID,
			EventName:   name,
			Buyer:       buyer,
			Quantity:    quantity,
			PaidWei:     req.PaymentWei,
			PurchasedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"token_ids": tokenIDs,
		"event_id":  eventID,
		"quantity":  quantity,
	})
}

// Transfer handles POST /v1/tickets/:tokenId/transfer.  The
// authenticated caller must be the current owner.
func (h *TicketHandler) Transfer(c echo.Context) error {
	from, err := callerAddress(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tokenID, err := pathID(c, "tokenId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if err := h.Ledger.Transfer(ctx, tokenID, from, req.To); err != nil {
		return ledgerError(c, err)
	}

	if h.Publish {
		var eventID uint64
		if tickets, terr := h.Ledger.TicketsOfOwner(ctx, req.To); terr == nil {
			for _, t := range tickets {
				if t.TokenID == tokenID {
					eventID = t.EventID
					break
				}
			}
		}
		_ = queue_publisher.PublishTicketTransferred(ctx, queue.TicketTransferredEvent{
			TokenID:       tokenID,
			EventID:       eventID,
			From:          from,
			To:            req.To,
			TransferredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"token_id": tokenID, "owner": req.To})
}

// OwnerOf handles GET /v1/tickets/:tokenId/owner.
func (h *TicketHandler) OwnerOf(c echo.Context) error {
	tokenID, err := pathID(c, "tokenId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	owner, err := h.Ledger.OwnerOf(c.Request().Context(), tokenID)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token_id": tokenID, "owner": owner})
}

// Balance handles GET /v1/accounts/:address/balance.  With an event_id
// query parameter it returns the per-event count instead of the total.
func (h *TicketHandler) Balance(c echo.Context) error {
	address := c.Param("address")
	ctx := c.Request().Context()
	if raw := c.QueryParam("event_id"); raw != "" {
		eventID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || eventID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event_id"})
		}
		n, err := h.Ledger.TicketsOwned(ctx, address, eventID)
		if err != nil {
			return ledgerError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"address": address, "event_id": eventID, "balance": n})
	}
	n, err := h.Ledger.BalanceOf(ctx, address)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"address": address, "balance": n})
}

// ticketView is the display projection of a ticket.
type ticketView struct {
	TokenID uint64 `json:"token_id"`
	EventID uint64 `json:"event_id"`
	Owner   string `json:"owner"`
}

// Owned handles GET /v1/accounts/:address/tickets, enumerating the
// address's tickets in mint order (the dashboard "my tickets" view).
// An optional index query parameter returns the single token at that
// enumeration position.
func (h *TicketHandler) Owned(c echo.Context) error {
	address := c.Param("address")
	ctx := c.Request().Context()
	if raw := c.QueryParam("index"); raw != "" {
		index, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
		}
		tokenID, err := h.Ledger.TokenOfOwnerByIndex(ctx, address, uint32(index))
		if err != nil {
			return ledgerError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"address": address, "index": index, "token_id": tokenID})
	}
	tickets, err := h.Ledger.TicketsOfOwner(ctx, address)
	if err != nil {
		return ledgerError(c, err)
	}
	views := make([]ticketView, len(tickets))
	for i, t := range tickets {
		views[i] = ticketView{TokenID: t.TokenID, EventID: t.EventID, Owner: t.Owner}
	}
	return c.JSON(http.StatusOK, echo.Map{"address": address, "tickets": views})
}
