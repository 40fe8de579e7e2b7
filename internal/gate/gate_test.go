package gate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/event-platform/internal/gate"
	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/model"
)

const gateToken = "0x" + "d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4"

var buyer = "0x" + strings.Repeat("b2", 20)

// fakeOracle scripts per-call outcomes and records how often it was hit.
type fakeOracle struct {
	balances map[string]uint64
	failures int // fail this many calls before answering
	calls    int
}

func (o *fakeOracle) Balance(ctx context.Context, gateToken, address string) (uint64, error) {
	o.calls++
	if o.failures > 0 {
		o.failures--
		return 0, errors.New("oracle unavailable")
	}
	return o.balances[address], nil
}

// fakeWhitelist is a static whitelist.
type fakeWhitelist map[string]bool

func (w fakeWhitelist) IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error) {
	return w[address], nil
}

func gatedEvent() *model.Event {
	return &model.Event{ID: 1, IsTokenGated: true, GateToken: gateToken}
}

func TestCheckAllowsNonGatedEvents(t *testing.T) {
	g := gate.New(fakeWhitelist{}, nil, 0, nil, 0)
	err := g.Check(context.Background(), &model.Event{ID: 1}, buyer)
	assert.NoError(t, err)
}

func TestCheckAllowsWhitelistedBuyer(t *testing.T) {
	oracle := &fakeOracle{}
	g := gate.New(fakeWhitelist{buyer: true}, oracle, 0, nil, 0)
	err := g.Check(context.Background(), gatedEvent(), buyer)
	assert.NoError(t, err)
	assert.Zero(t, oracle.calls, "whitelisted buyers skip the oracle")
}

func TestCheckAllowsGateTokenHolder(t *testing.T) {
	oracle := &fakeOracle{balances: map[string]uint64{buyer: 3}}
	g := gate.New(fakeWhitelist{}, oracle, 0, nil, 0)
	err := g.Check(context.Background(), gatedEvent(), buyer)
	assert.NoError(t, err)
}

func TestCheckDeniesZeroBalance(t *testing.T) {
	oracle := &fakeOracle{balances: map[string]uint64{}}
	g := gate.New(fakeWhitelist{}, oracle, 0, nil, 0)
	err := g.Check(context.Background(), gatedEvent(), buyer)
	assert.ErrorIs(t, err, ledger.ErrAccessDenied)
}

func TestCheckDeniesWithoutOracle(t *testing.T) {
	g := gate.New(fakeWhitelist{}, nil, 0, nil, 0)
	err := g.Check(context.Background(), gatedEvent(), buyer)
	assert.ErrorIs(t, err, ledger.ErrAccessDenied)
}

func TestCheckRetriesTransientOracleFailures(t *testing.T) {
	oracle := &fakeOracle{balances: map[string]uint64{buyer: 1}, failures: 2}
	g := gate.New(fakeWhitelist{}, oracle, 2, nil, 0)
	err := g.Check(context.Background(), gatedEvent(), buyer)
	require.NoError(t, err)
	assert.Equal(t, 3, oracle.calls)
}

func TestCheckDeniesWhenRetriesExhausted(t *testing.T) {
	oracle := &fakeOracle{balances: map[string]uint64{buyer: 1}, failures: 10}
	g := gate.New(fakeWhitelist{}, oracle, 2, nil, 0)
	err := g.Check(context.Background(), gatedEvent(), buyer)
	assert.ErrorIs(t, err, ledger.ErrAccessDenied)
	assert.Equal(t, 3, oracle.calls, "one attempt plus two retries")
}

// TestGatedPurchaseAfterWhitelisting wires the gate into a full ledger:
// a buyer holding none of the gate token is denied until the organizer
// whitelists them, after which the identical purchase succeeds.
func TestGatedPurchaseAfterWhitelisting(t *testing.T) {
	ctx := context.Background()
	organizer := "0x" + strings.Repeat("a1", 20)

	store := ledger.NewMemoryStore()
	g := gate.New(store, &fakeOracle{}, 0, nil, 0)
	l := ledger.New(store, g, ledger.OverpaymentRetain)

	ev, err := l.CreateEvent(ctx, ledger.CreateEventParams{
		Name:         "Holders Only",
		PriceWei:     100,
		TicketSupply: 10,
		IsTokenGated: true,
		GateToken:    gateToken,
		Organizer:    organizer,
	})
	require.NoError(t, err)

	_, err = l.Purchase(ctx, ev.ID, buyer, 100, 1)
	require.ErrorIs(t, err, ledger.ErrAccessDenied)

	require.NoError(t, l.AddToWhitelist(ctx, ev.ID, organizer, []string{buyer}))

	tokenIDs, err := l.Purchase(ctx, ev.ID, buyer, 100, 1)
	require.NoError(t, err)
	require.Len(t, tokenIDs, 1)
}

func TestCheckStopsRetryingOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	oracle := &fakeOracle{balances: map[string]uint64{buyer: 1}, failures: 10}
	g := gate.New(fakeWhitelist{}, oracle, 5, nil, 0)
	err := g.Check(ctx, gatedEvent(), buyer)
	assert.ErrorIs(t, err, ledger.ErrAccessDenied)
	assert.Equal(t, 1, oracle.calls)
}
