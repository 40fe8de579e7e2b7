// Package repository is the MySQL persistence layer.  Store assembles
// the individual repositories into the ledger.Store interface; the
// auth-related repositories (users, refresh tokens) sit alongside it.
package repository

import (
	"context"
	"database/sql"

	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/model"
)

// Store implements ledger.Store on MySQL.  Reads go straight to the
// pool and observe only committed rows; mutations run inside a single
// database transaction per ledger operation, serialized against each
// other by row locks and the conditional sale update.
type Store struct {
	db        *sql.DB
	Events    *EventRepo
	Tickets   *TicketRepo
	Whitelist *WhitelistRepo
}

// NewStore builds a Store and its repositories over one pool.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Events:    NewEventRepo(db),
		Tickets:   NewTicketRepo(db),
		Whitelist: NewWhitelistRepo(db),
	}
}

// DB exposes the underlying pool for auxiliary wiring (auth repos).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return s.Events.GetByID(ctx, id)
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.Events.List(ctx)
}

func (s *Store) ListEventsByOrganizer(ctx context.Context, organizer string) ([]model.Event, error) {
	return s.Events.ListByOrganizer(ctx, organizer)
}

func (s *Store) EventCount(ctx context.Context) (uint64, error) {
	return s.Events.Count(ctx)
}

func (s *Store) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	return s.Tickets.OwnerOf(ctx, tokenID)
}

func (s *Store) BalanceOf(ctx context.Context, owner string) (uint32, error) {
	return s.Tickets.BalanceOf(ctx, owner)
}

func (s *Store) TicketsOwned(ctx context.Context, owner string, eventID uint64) (uint32, error) {
	return s.Tickets.TicketsOwned(ctx, owner, eventID)
}

func (s *Store) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint32) (uint64, error) {
	return s.Tickets.TokenOfOwnerByIndex(ctx, owner, index)
}

func (s *Store) TicketsOfOwner(ctx context.Context, owner string) ([]model.Ticket, error) {
	return s.Tickets.TicketsOfOwner(ctx, owner)
}

func (s *Store) IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error) {
	return s.Whitelist.IsWhitelisted(ctx, eventID, address)
}

// WithinTx opens a transaction, runs fn over it, and commits only when
// fn returns nil.  Any error rolls everything back so no partial
// mutation is ever visible.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbTx.Rollback()
		}
	}()
	if err := fn(&sqlTx{ctx: ctx, tx: dbTx, store: s}); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlTx adapts a *sql.Tx to the ledger.Tx mutation surface.
type sqlTx struct {
	ctx   context.Context
	tx    *sql.Tx
	store *Store
}

func (t *sqlTx) CreateEvent(ev *model.Event) error {
	return t.store.Events.CreateTx(t.ctx, t.tx, ev)
}

func (t *sqlTx) RecordSale(eventID uint64, qty uint32) error {
	return t.store.Events.RecordSaleTx(t.ctx, t.tx, eventID, qty)
}

func (t *sqlTx) Mint(eventID uint64, owner string) (uint64, error) {
	return t.store.Tickets.MintTx(t.ctx, t.tx, eventID, owner)
}

func (t *sqlTx) Transfer(tokenID uint64, from, to string) error {
	return t.store.Tickets.TransferTx(t.ctx, t.tx, tokenID, from, to)
}

func (t *sqlTx) AddToWhitelist(eventID uint64, addresses []string) error {
	return t.store.Whitelist.AddTx(t.ctx, t.tx, eventID, addresses)
}

func (t *sqlTx) RemoveFromWhitelist(eventID uint64, addresses []string) error {
	return t.store.Whitelist.RemoveTx(t.ctx, t.tx, eventID, addresses)
}
