// Package ledger owns event and ticket state and enforces its invariants
// under atomic, all-or-nothing transitions: event creation, gated and
// ungated purchase, ownership transfer, and whitelist management.
package ledger

import "errors"

// Sentinel errors returned by the ledger.  Every error aborts the entire
// operation with zero observable state change; handlers translate these
// into HTTP responses with errors.Is.
var (
	// ErrEventNotFound is returned when no event exists for the given id.
	ErrEventNotFound = errors.New("event not found")

	// ErrTicketNotFound is returned when no ticket exists for the given token id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrValidation is returned for bad creation or request parameters.
	ErrValidation = errors.New("invalid parameters")

	// ErrSoldOut is returned when a purchase is attempted against an event
	// with no remaining tickets.
	ErrSoldOut = errors.New("event sold out")

	// ErrInsufficientPayment is returned when the payment amount does not
	// cover the ticket price.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrAccessDenied is returned when the access gate rejects a buyer for
	// a token-gated event.
	ErrAccessDenied = errors.New("access denied")

	// ErrCapacityExceeded is returned when recording a sale would push
	// tickets_sold past ticket_supply.  It can only surface under
	// concurrent execution; the enclosing transaction is rolled back.
	ErrCapacityExceeded = errors.New("ticket supply exceeded")

	// ErrInvalidTransfer is returned when the sender of a transfer is not
	// the current owner of the ticket.
	ErrInvalidTransfer = errors.New("sender does not own ticket")

	// ErrUnauthorized is returned when the caller of an organizer-only
	// operation is not the event's organizer.
	ErrUnauthorized = errors.New("caller is not the organizer")

	// ErrIndexOutOfRange is returned by owner token enumeration when the
	// index is at or beyond the owner's balance.
	ErrIndexOutOfRange = errors.New("owner token index out of range")
)
