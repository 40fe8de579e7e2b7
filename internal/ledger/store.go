package ledger

import (
	"context"

	"github.com/mintgate/event-platform/internal/model"
)

// Store is the persistence boundary of the ledger.  Read methods observe
// only committed state; all mutations happen through WithinTx so that a
// failing step discards every effect of the transaction.
//
// Implementations: the MySQL store in internal/repository (production)
// and MemoryStore in this package (tests, reference semantics).
type Store interface {
	// GetEvent returns the event with the given id or ErrEventNotFound.
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)

	// ListEvents returns all events in creation order.
	ListEvents(ctx context.Context) ([]model.Event, error)

	// ListEventsByOrganizer returns the events created by the organizer
	// address, in creation order.
	ListEventsByOrganizer(ctx context.Context, organizer string) ([]model.Event, error)

	// EventCount returns the number of events created so far.
	EventCount(ctx context.Context) (uint64, error)

	// OwnerOf returns the current owner of a token or ErrTicketNotFound.
	OwnerOf(ctx context.Context, tokenID uint64) (string, error)

	// BalanceOf returns the total tickets held by owner across all events.
	BalanceOf(ctx context.Context, owner string) (uint32, error)

	// TicketsOwned returns the tickets held by owner for one event.
	TicketsOwned(ctx context.Context, owner string, eventID uint64) (uint32, error)

	// TokenOfOwnerByIndex enumerates an owner's tokens in mint order.
	// The order is stable between calls absent further mutation.  It
	// returns ErrIndexOutOfRange when index >= BalanceOf(owner).
	TokenOfOwnerByIndex(ctx context.Context, owner string, index uint32) (uint64, error)

	// TicketsOfOwner returns every ticket held by owner, in mint order.
	TicketsOfOwner(ctx context.Context, owner string) ([]model.Ticket, error)

	// IsWhitelisted reports whether address is on the event's whitelist.
	IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error)

	// WithinTx runs fn inside a single-writer transaction.  Mutations made
	// through the Tx become visible only if fn returns nil; on error every
	// effect is rolled back.  At most one transaction mutates shared state
	// at any instant, so readers never observe in-flight mutations.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the mutation surface available inside a store transaction.
type Tx interface {
	// CreateEvent durably inserts the event and assigns the next
	// sequential id on the passed record.
	CreateEvent(ev *model.Event) error

	// RecordSale increments the event's tickets_sold by qty.  It returns
	// ErrCapacityExceeded if the increment would exceed ticket_supply and
	// ErrEventNotFound if the event does not exist.
	RecordSale(eventID uint64, qty uint32) error

	// Mint allocates the next monotonically increasing token id and
	// records (tokenID -> {eventID, owner}).  Capacity is enforced by the
	// caller via RecordSale within the same transaction.
	Mint(eventID uint64, owner string) (uint64, error)

	// Transfer reassigns ownership of a token.  It returns
	// ErrTicketNotFound for an unknown token and ErrInvalidTransfer when
	// the recorded owner is not from.
	Transfer(tokenID uint64, from, to string) error

	// AddToWhitelist idempotently adds each address to the event's whitelist.
	AddToWhitelist(eventID uint64, addresses []string) error

	// RemoveFromWhitelist idempotently removes each address; removing an
	// absent address is not an error.
	RemoveFromWhitelist(eventID uint64, addresses []string) error
}
