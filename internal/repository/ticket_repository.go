package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/model"
)

// TicketRepo provides persistence for tickets.  Token ids come from the
// table's AUTO_INCREMENT column, which is globally monotonic across all
// events, and mint order equals id order — that ordering is what
// TokenOfOwnerByIndex enumerates.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// MintTx inserts a ticket row for (eventID, owner) inside the
// transaction and returns the allocated token id.
func (r *TicketRepo) MintTx(ctx context.Context, tx *sql.Tx, eventID uint64, owner string) (uint64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO tickets (event_id, owner) VALUES (?, ?)`, eventID, owner)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// TransferTx reassigns ownership inside the transaction.  The current
// owner row is locked with FOR UPDATE so two concurrent transfers of the
// same token serialize; the loser then fails the owner comparison.
func (r *TicketRepo) TransferTx(ctx context.Context, tx *sql.Tx, tokenID uint64, from, to string) error {
	var owner string
	err := tx.QueryRowContext(ctx,
		`SELECT owner FROM tickets WHERE id = ? FOR UPDATE`, tokenID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrTicketNotFound
		}
		return err
	}
	if owner != from {
		return ledger.ErrInvalidTransfer
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE tickets SET owner = ? WHERE id = ?`, to, tokenID)
	return err
}

// OwnerOf returns the current owner of a token.
func (r *TicketRepo) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx,
		`SELECT owner FROM tickets WHERE id = ?`, tokenID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ledger.ErrTicketNotFound
		}
		return "", err
	}
	return owner, nil
}

// BalanceOf returns the total tickets held by owner across all events.
func (r *TicketRepo) BalanceOf(ctx context.Context, owner string) (uint32, error) {
	var n uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE owner = ?`, owner).Scan(&n)
	return n, err
}

// TicketsOwned returns the tickets held by owner for a single event.
func (r *TicketRepo) TicketsOwned(ctx context.Context, owner string, eventID uint64) (uint32, error) {
	var n uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE owner = ? AND event_id = ?`, owner, eventID).Scan(&n)
	return n, err
}

// TokenOfOwnerByIndex returns the owner's index-th token in mint order,
// or ledger.ErrIndexOutOfRange when index >= BalanceOf(owner).
func (r *TicketRepo) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint32) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM tickets WHERE owner = ? ORDER BY id LIMIT 1 OFFSET ?`,
		owner, index).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ledger.ErrIndexOutOfRange
		}
		return 0, err
	}
	return id, nil
}

// TicketsOfOwner returns every ticket held by owner, in mint order.
func (r *TicketRepo) TicketsOfOwner(ctx context.Context, owner string) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, owner, minted_at FROM tickets WHERE owner = ? ORDER BY id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.TokenID, &t.EventID, &t.Owner, &t.MintedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
