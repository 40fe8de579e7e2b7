package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mintgate/event-platform/internal/model"
)

// MemoryStore is the reference Store implementation: an in-process arena
// of records behind a single mutex.  WithinTx holds the write lock for
// the whole transaction, so at most one mutating operation is applied at
// any instant and readers only ever observe committed state.  A failed
// transaction restores the pre-transaction snapshot.
//
// It backs the unit tests and documents the single-writer semantics the
// MySQL store reproduces with row locks and conditional updates.
type MemoryStore struct {
	mu sync.RWMutex

	events      map[uint64]*model.Event
	eventOrder  []uint64
	nextEventID uint64

	tickets     map[uint64]*model.Ticket
	nextTokenID uint64

	// ownerTokens keeps each owner's token ids in ascending id order,
	// the order TokenOfOwnerByIndex enumerates.
	ownerTokens map[string][]uint64

	whitelist map[uint64]map[string]struct{}
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:      make(map[uint64]*model.Event),
		tickets:     make(map[uint64]*model.Ticket),
		ownerTokens: make(map[string][]uint64),
		whitelist:   make(map[uint64]map[string]struct{}),
	}
}

func (s *MemoryStore) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		out = append(out, *s.events[id])
	}
	return out, nil
}

func (s *MemoryStore) ListEventsByOrganizer(ctx context.Context, organizer string) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, 0)
	for _, id := range s.eventOrder {
		if s.events[id].Organizer == organizer {
			out = append(out, *s.events[id])
		}
	}
	return out, nil
}

func (s *MemoryStore) EventCount(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.eventOrder)), nil
}

func (s *MemoryStore) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[tokenID]
	if !ok {
		return "", ErrTicketNotFound
	}
	return t.Owner, nil
}

func (s *MemoryStore) BalanceOf(ctx context.Context, owner string) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint32(len(s.ownerTokens[owner])), nil
}

func (s *MemoryStore) TicketsOwned(ctx context.Context, owner string, eventID uint64) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n uint32
	for _, id := range s.ownerTokens[owner] {
		if s.tickets[id].EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint32) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens := s.ownerTokens[owner]
	if uint64(index) >= uint64(len(tokens)) {
		return 0, ErrIndexOutOfRange
	}
	return tokens[index], nil
}

func (s *MemoryStore) TicketsOfOwner(ctx context.Context, owner string) ([]model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Ticket, 0, len(s.ownerTokens[owner]))
	for _, id := range s.ownerTokens[owner] {
		out = append(out, *s.tickets[id])
	}
	return out, nil
}

func (s *MemoryStore) IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.whitelist[eventID][address]
	return ok, nil
}

// WithinTx serializes the transaction under the write lock.  The
// function mutates live state through memTx; on error the snapshot taken
// before fn ran is restored, so no partial mutation survives.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// memSnapshot is a deep copy of the mutable store state.
type memSnapshot struct {
	events      map[uint64]*model.Event
	eventOrder  []uint64
	nextEventID uint64
	tickets     map[uint64]*model.Ticket
	nextTokenID uint64
	ownerTokens map[string][]uint64
	whitelist   map[uint64]map[string]struct{}
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		events:      make(map[uint64]*model.Event, len(s.events)),
		eventOrder:  append([]uint64(nil), s.eventOrder...),
		nextEventID: s.nextEventID,
		tickets:     make(map[uint64]*model.Ticket, len(s.tickets)),
		nextTokenID: s.nextTokenID,
		ownerTokens: make(map[string][]uint64, len(s.ownerTokens)),
		whitelist:   make(map[uint64]map[string]struct{}, len(s.whitelist)),
	}
	for id, ev := range s.events {
		cp := *ev
		snap.events[id] = &cp
	}
	for id, t := range s.tickets {
		cp := *t
		snap.tickets[id] = &cp
	}
	for owner, tokens := range s.ownerTokens {
		snap.ownerTokens[owner] = append([]uint64(nil), tokens...)
	}
	for ev, set := range s.whitelist {
		cp := make(map[string]struct{}, len(set))
		for a := range set {
			cp[a] = struct{}{}
		}
		snap.whitelist[ev] = cp
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.events = snap.events
	s.eventOrder = snap.eventOrder
	s.nextEventID = snap.nextEventID
	s.tickets = snap.tickets
	s.nextTokenID = snap.nextTokenID
	s.ownerTokens = snap.ownerTokens
	s.whitelist = snap.whitelist
}

// memTx mutates the store directly; WithinTx holds the lock and handles
// rollback, so these methods stay simple.
type memTx struct {
	s *MemoryStore
}

func (tx *memTx) CreateEvent(ev *model.Event) error {
	tx.s.nextEventID++
	ev.ID = tx.s.nextEventID
	ev.CreatedAt = time.Now().UTC()
	cp := *ev
	tx.s.events[ev.ID] = &cp
	tx.s.eventOrder = append(tx.s.eventOrder, ev.ID)
	return nil
}

func (tx *memTx) RecordSale(eventID uint64, qty uint32) error {
	ev, ok := tx.s.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	if ev.TicketsSold+qty > ev.TicketSupply {
		return ErrCapacityExceeded
	}
	ev.TicketsSold += qty
	return nil
}

func (tx *memTx) Mint(eventID uint64, owner string) (uint64, error) {
	if _, ok := tx.s.events[eventID]; !ok {
		return 0, ErrEventNotFound
	}
	tx.s.nextTokenID++
	id := tx.s.nextTokenID
	tx.s.tickets[id] = &model.Ticket{
		TokenID:  id,
		EventID:  eventID,
		Owner:    owner,
		MintedAt: time.Now().UTC(),
	}
	tx.s.ownerTokens[owner] = append(tx.s.ownerTokens[owner], id)
	return id, nil
}

func (tx *memTx) Transfer(tokenID uint64, from, to string) error {
	t, ok := tx.s.tickets[tokenID]
	if !ok {
		return ErrTicketNotFound
	}
	if t.Owner != from {
		return ErrInvalidTransfer
	}
	t.Owner = to
	tokens := tx.s.ownerTokens[from]
	for i, id := range tokens {
		if id == tokenID {
			tx.s.ownerTokens[from] = append(tokens[:i:i], tokens[i+1:]...)
			break
		}
	}
	dst := tx.s.ownerTokens[to]
	i := sort.Search(len(dst), func(i int) bool { return dst[i] > tokenID })
	dst = append(dst, 0)
	copy(dst[i+1:], dst[i:])
	dst[i] = tokenID
	tx.s.ownerTokens[to] = dst
	return nil
}

func (tx *memTx) AddToWhitelist(eventID uint64, addresses []string) error {
	if _, ok := tx.s.events[eventID]; !ok {
		return ErrEventNotFound
	}
	set, ok := tx.s.whitelist[eventID]
	if !ok {
		set = make(map[string]struct{})
		tx.s.whitelist[eventID] = set
	}
	for _, a := range addresses {
		set[a] = struct{}{}
	}
	return nil
}

func (tx *memTx) RemoveFromWhitelist(eventID uint64, addresses []string) error {
	if _, ok := tx.s.events[eventID]; !ok {
		return ErrEventNotFound
	}
	set := tx.s.whitelist[eventID]
	for _, a := range addresses {
		delete(set, a)
	}
	return nil
}
