package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/model"
)

// EventRepo provides persistence for events.  Events are created once
// and only their tickets_sold column mutates afterwards; the column is
// guarded by a conditional UPDATE so the capacity invariant holds even
// under concurrent purchases.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, name, description, event_date, price_wei, ticket_supply, tickets_sold,
	organizer, is_token_gated, gate_token, metadata_hash, created_at`

// CreateTx inserts a new event within the scope of an existing
// transaction and populates the generated sequential ID on the record.
// The caller must commit or roll back the transaction.
func (r *EventRepo) CreateTx(ctx context.Context, tx *sql.Tx, ev *model.Event) error {
	const q = `INSERT INTO events
		(name, description, event_date, price_wei, ticket_supply, tickets_sold, organizer, is_token_gated, gate_token, metadata_hash)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`
	var gateToken sql.NullString
	if ev.IsTokenGated {
		gateToken = sql.NullString{String: ev.GateToken, Valid: true}
	}
	result, err := tx.ExecContext(ctx, q,
		ev.Name, ev.Description, ev.Date, ev.PriceWei, ev.TicketSupply,
		ev.Organizer, ev.IsTokenGated, gateToken, ev.MetadataHash)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	// Query back the row to populate the creation timestamp.
	const sel = `SELECT created_at FROM events WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, ev.ID).Scan(&ev.CreatedAt)
}

// GetByID returns the event or ledger.ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// List returns all events in creation order.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events ORDER BY id`
	return r.queryEvents(ctx, q)
}

// ListByOrganizer returns the organizer's events in creation order.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizer string) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organizer = ? ORDER BY id`
	return r.queryEvents(ctx, q, organizer)
}

// Count returns the number of events created so far.
func (r *EventRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// RecordSaleTx increments tickets_sold by qty inside the transaction.
// The UPDATE carries the capacity guard in its WHERE clause, so a
// concurrent purchase that already consumed the remaining supply makes
// this statement match zero rows and the sale fails with
// ledger.ErrCapacityExceeded instead of overselling.
func (r *EventRepo) RecordSaleTx(ctx context.Context, tx *sql.Tx, eventID uint64, qty uint32) error {
	const q = `UPDATE events
		SET tickets_sold = tickets_sold + ?
		WHERE id = ? AND tickets_sold + ? <= ticket_supply`
	result, err := tx.ExecContext(ctx, q, qty, eventID, qty)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing event from an exhausted supply.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)`, eventID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ledger.ErrEventNotFound
		}
		return ledger.ErrCapacityExceeded
	}
	return nil
}

// queryEvents runs a SELECT over eventColumns and scans all rows.
func (r *EventRepo) queryEvents(ctx context.Context, q string, args ...interface{}) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var ev model.Event
	var gateToken sql.NullString
	err := row.Scan(
		&ev.ID, &ev.Name, &ev.Description, &ev.Date, &ev.PriceWei,
		&ev.TicketSupply, &ev.TicketsSold, &ev.Organizer,
		&ev.IsTokenGated, &gateToken, &ev.MetadataHash, &ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if gateToken.Valid {
		ev.GateToken = gateToken.String
	}
	return &ev, nil
}
