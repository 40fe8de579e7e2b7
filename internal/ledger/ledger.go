package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mintgate/event-platform/internal/model"
	"github.com/mintgate/event-platform/internal/utils"
)

// maxNameLen bounds event names at creation time.
const maxNameLen = 200

// OverpaymentPolicy controls what happens when payment_wei exceeds the
// total price.  The source of funds is validated by the payment
// collaborator before the ledger is invoked, so the ledger only decides
// whether to accept the amount.
type OverpaymentPolicy string

const (
	// OverpaymentRetain accepts any amount at or above the total price;
	// the surplus is retained by the organizer.
	OverpaymentRetain OverpaymentPolicy = "retain"
	// OverpaymentReject aborts the purchase when the amount is not exactly
	// the total price.
	OverpaymentReject OverpaymentPolicy = "reject"
)

// AccessChecker decides whether a buyer may purchase a gated event.  It
// returns nil to allow and ErrAccessDenied to deny.  Implemented by the
// gate package; the ledger calls it strictly before any state mutation.
type AccessChecker interface {
	Check(ctx context.Context, ev *model.Event, buyer string) error
}

// CreateEventParams carries the immutable fields of a new event.
type CreateEventParams struct {
	Name         string
	Description  string
	Date         int64
	PriceWei     uint64
	TicketSupply uint32
	IsTokenGated bool
	GateToken    string
	MetadataHash string
	Organizer    string
}

// Ledger orchestrates the event registry, access gate and ticket store
// into atomic operations.  All checks complete before any mutation
// begins, and mutations for one operation commit or roll back as a unit.
type Ledger struct {
	store       Store
	gate        AccessChecker
	overpayment OverpaymentPolicy
}

// New constructs a Ledger.  gate may be nil, in which case token-gated
// events deny every purchase (whitelist checks included) — callers are
// expected to wire a real gate in production.
func New(store Store, gate AccessChecker, overpayment OverpaymentPolicy) *Ledger {
	if store == nil {
		panic("nil store passed to ledger.New")
	}
	if overpayment != OverpaymentReject {
		overpayment = OverpaymentRetain
	}
	return &Ledger{store: store, gate: gate, overpayment: overpayment}
}

// CreateEvent validates the parameters and durably inserts a new event,
// assigning the next sequential id.  No other state is mutated.
func (l *Ledger) CreateEvent(ctx context.Context, p CreateEventParams) (*model.Event, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrValidation, maxNameLen)
	}
	if p.TicketSupply == 0 {
		return nil, fmt.Errorf("%w: ticket supply must be positive", ErrValidation)
	}
	organizer, ok := utils.NormalizeAddress(p.Organizer)
	if !ok {
		return nil, fmt.Errorf("%w: invalid organizer address", ErrValidation)
	}
	gateToken := ""
	if p.IsTokenGated {
		gateToken, ok = utils.NormalizeAddress(p.GateToken)
		if !ok {
			return nil, fmt.Errorf("%w: gated event requires a gate token address", ErrValidation)
		}
	}

	ev := &model.Event{
		Name:         name,
		Description:  p.Description,
		Date:         p.Date,
		PriceWei:     p.PriceWei,
		TicketSupply: p.TicketSupply,
		Organizer:    organizer,
		IsTokenGated: p.IsTokenGated,
		GateToken:    gateToken,
		MetadataHash: p.MetadataHash,
	}
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		return tx.CreateEvent(ev)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Purchase executes the purchase protocol for quantity tickets:
//
//	Validating -> Gated-Check -> Committing -> Done
//
// Validation and the gate check complete before any mutation.  The
// commit mints the tokens and records the sale in one transaction; if
// recording the sale would violate the capacity invariant (possible only
// when a concurrent purchase committed in between), the mints are rolled
// back and the purchase aborts with ErrCapacityExceeded.  On success the
// newly minted token ids are returned in mint order.
func (l *Ledger) Purchase(ctx context.Context, eventID uint64, buyer string, paymentWei uint64, quantity uint32) ([]uint64, error) {
	if quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	buyerAddr, ok := utils.NormalizeAddress(buyer)
	if !ok {
		return nil, fmt.Errorf("%w: invalid buyer address", ErrValidation)
	}

	// Validating.
	ev, err := l.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Remaining() < quantity {
		return nil, ErrSoldOut
	}
	total, err := totalPrice(ev.PriceWei, quantity)
	if err != nil {
		return nil, err
	}
	if paymentWei < total {
		return nil, ErrInsufficientPayment
	}
	if l.overpayment == OverpaymentReject && paymentWei > total {
		return nil, fmt.Errorf("%w: overpayment not accepted, price is %d wei", ErrValidation, total)
	}

	// Gated-Check.  The oracle call may block or fail; nothing has been
	// mutated yet, so a slow or failed gate query leaves no trace.
	if ev.IsTokenGated {
		if l.gate == nil {
			return nil, ErrAccessDenied
		}
		if err := l.gate.Check(ctx, ev, buyerAddr); err != nil {
			return nil, err
		}
	}

	// Committing.
	tokenIDs := make([]uint64, 0, quantity)
	err = l.store.WithinTx(ctx, func(tx Tx) error {
		for i := uint32(0); i < quantity; i++ {
			id, err := tx.Mint(eventID, buyerAddr)
			if err != nil {
				return err
			}
			tokenIDs = append(tokenIDs, id)
		}
		return tx.RecordSale(eventID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return tokenIDs, nil
}

// Transfer reassigns ownership of a ticket from `from` to `to`.  The
// owner check and the reassignment happen in one transaction so the
// per-owner counts stay consistent with the ticket records.
func (l *Ledger) Transfer(ctx context.Context, tokenID uint64, from, to string) error {
	fromAddr, ok := utils.NormalizeAddress(from)
	if !ok {
		return fmt.Errorf("%w: invalid sender address", ErrValidation)
	}
	toAddr, ok := utils.NormalizeAddress(to)
	if !ok {
		return fmt.Errorf("%w: invalid recipient address", ErrValidation)
	}
	return l.store.WithinTx(ctx, func(tx Tx) error {
		return tx.Transfer(tokenID, fromAddr, toAddr)
	})
}

// AddToWhitelist adds addresses to the event's whitelist.  Only the
// event's organizer may edit the whitelist; additions are idempotent.
func (l *Ledger) AddToWhitelist(ctx context.Context, eventID uint64, caller string, addresses []string) error {
	normalized, err := l.authorizeWhitelistEdit(ctx, eventID, caller, addresses)
	if err != nil {
		return err
	}
	return l.store.WithinTx(ctx, func(tx Tx) error {
		return tx.AddToWhitelist(eventID, normalized)
	})
}

// RemoveFromWhitelist removes addresses from the event's whitelist.
// Removing an address that is not present is not an error.
func (l *Ledger) RemoveFromWhitelist(ctx context.Context, eventID uint64, caller string, addresses []string) error {
	normalized, err := l.authorizeWhitelistEdit(ctx, eventID, caller, addresses)
	if err != nil {
		return err
	}
	return l.store.WithinTx(ctx, func(tx Tx) error {
		return tx.RemoveFromWhitelist(eventID, normalized)
	})
}

// authorizeWhitelistEdit verifies the event exists, the caller is its
// organizer, and every address is well formed.
func (l *Ledger) authorizeWhitelistEdit(ctx context.Context, eventID uint64, caller string, addresses []string) ([]string, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: addresses are required", ErrValidation)
	}
	ev, err := l.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	callerAddr, ok := utils.NormalizeAddress(caller)
	if !ok || callerAddr != ev.Organizer {
		return nil, ErrUnauthorized
	}
	normalized := make([]string, 0, len(addresses))
	for _, a := range addresses {
		addr, ok := utils.NormalizeAddress(a)
		if !ok {
			return nil, fmt.Errorf("%w: invalid address %q", ErrValidation, a)
		}
		normalized = append(normalized, addr)
	}
	return normalized, nil
}

// ----- read facade -----

// GetEvent returns a committed snapshot of the event.
func (l *Ledger) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return l.store.GetEvent(ctx, id)
}

// ListEvents returns all events in creation order.
func (l *Ledger) ListEvents(ctx context.Context) ([]model.Event, error) {
	return l.store.ListEvents(ctx)
}

// ListEventsByOrganizer returns the events created by organizer.
func (l *Ledger) ListEventsByOrganizer(ctx context.Context, organizer string) ([]model.Event, error) {
	addr, ok := utils.NormalizeAddress(organizer)
	if !ok {
		return nil, fmt.Errorf("%w: invalid organizer address", ErrValidation)
	}
	return l.store.ListEventsByOrganizer(ctx, addr)
}

// EventCount returns the number of events created so far.
func (l *Ledger) EventCount(ctx context.Context) (uint64, error) {
	return l.store.EventCount(ctx)
}

// OwnerOf returns the current owner of a token.
func (l *Ledger) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	return l.store.OwnerOf(ctx, tokenID)
}

// BalanceOf returns the total tickets held by owner across all events.
func (l *Ledger) BalanceOf(ctx context.Context, owner string) (uint32, error) {
	addr, ok := utils.NormalizeAddress(owner)
	if !ok {
		return 0, fmt.Errorf("%w: invalid owner address", ErrValidation)
	}
	return l.store.BalanceOf(ctx, addr)
}

// TicketsOwned returns the tickets held by owner for one event.
func (l *Ledger) TicketsOwned(ctx context.Context, owner string, eventID uint64) (uint32, error) {
	addr, ok := utils.NormalizeAddress(owner)
	if !ok {
		return 0, fmt.Errorf("%w: invalid owner address", ErrValidation)
	}
	return l.store.TicketsOwned(ctx, addr, eventID)
}

// TokenOfOwnerByIndex enumerates an owner's tokens in mint order.
func (l *Ledger) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint32) (uint64, error) {
	addr, ok := utils.NormalizeAddress(owner)
	if !ok {
		return 0, fmt.Errorf("%w: invalid owner address", ErrValidation)
	}
	return l.store.TokenOfOwnerByIndex(ctx, addr, index)
}

// TicketsOfOwner returns every ticket held by owner, in mint order.
func (l *Ledger) TicketsOfOwner(ctx context.Context, owner string) ([]model.Ticket, error) {
	addr, ok := utils.NormalizeAddress(owner)
	if !ok {
		return nil, fmt.Errorf("%w: invalid owner address", ErrValidation)
	}
	return l.store.TicketsOfOwner(ctx, addr)
}

// IsWhitelisted reports whether address is on the event's whitelist.
func (l *Ledger) IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error) {
	addr, ok := utils.NormalizeAddress(address)
	if !ok {
		return false, fmt.Errorf("%w: invalid address", ErrValidation)
	}
	if _, err := l.store.GetEvent(ctx, eventID); err != nil {
		return false, err
	}
	return l.store.IsWhitelisted(ctx, eventID, addr)
}

// totalPrice multiplies price by quantity, guarding against overflow.
func totalPrice(priceWei uint64, quantity uint32) (uint64, error) {
	if priceWei == 0 || quantity == 0 {
		return 0, nil
	}
	if priceWei > math.MaxUint64/uint64(quantity) {
		return 0, fmt.Errorf("%w: total price overflows", ErrValidation)
	}
	return priceWei * uint64(quantity), nil
}
