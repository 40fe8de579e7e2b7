// Package gate evaluates whether a buyer may purchase a token-gated
// event: allowed when the buyer is on the event's whitelist or when the
// external balance oracle reports a non-zero holding of the gate token.
package gate

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mintgate/event-platform/internal/ledger"
	"github.com/mintgate/event-platform/internal/model"
)

// BalanceOracle is the external source of truth for gate-token holdings.
// Given a gate token (collection address) and a wallet address it returns
// the address's holding count.  It may fail transiently.
type BalanceOracle interface {
	Balance(ctx context.Context, gateToken, address string) (uint64, error)
}

// WhitelistReader is the read-only view of the per-event whitelists the
// gate consults.  Satisfied by ledger.Store.
type WhitelistReader interface {
	IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error)
}

// Gate implements ledger.AccessChecker.  Oracle lookups are retried a
// bounded number of times and cached briefly in redis; a persistently
// failing oracle denies rather than silently allows.
type Gate struct {
	whitelist WhitelistReader
	oracle    BalanceOracle
	retries   int
	cache     *redis.Client // nil disables caching
	cacheTTL  time.Duration
}

// New constructs a Gate.  oracle may be nil, in which case gated events
// admit whitelisted buyers only.  cache may be nil.
func New(whitelist WhitelistReader, oracle BalanceOracle, retries int, cache *redis.Client, cacheTTL time.Duration) *Gate {
	if whitelist == nil {
		panic("nil whitelist reader passed to gate.New")
	}
	if retries < 0 {
		retries = 0
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Gate{whitelist: whitelist, oracle: oracle, retries: retries, cache: cache, cacheTTL: cacheTTL}
}

// Check reports whether buyer may purchase ev.  Non-gated events always
// allow.  Gated events allow when the buyer is whitelisted or holds a
// non-zero balance of the gate token; every other outcome, including
// oracle failure, denies with ledger.ErrAccessDenied.
func (g *Gate) Check(ctx context.Context, ev *model.Event, buyer string) error {
	if !ev.IsTokenGated {
		return nil
	}
	ok, err := g.whitelist.IsWhitelisted(ctx, ev.ID, buyer)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if g.oracle == nil {
		return ledger.ErrAccessDenied
	}
	bal, err := g.balance(ctx, ev.GateToken, buyer)
	if err != nil {
		log.Printf("gate: oracle lookup failed for %s/%s: %v", ev.GateToken, buyer, err)
		return ledger.ErrAccessDenied
	}
	if bal == 0 {
		return ledger.ErrAccessDenied
	}
	return nil
}

// balance returns the buyer's gate-token holding, consulting the redis
// cache first and retrying the oracle up to g.retries extra times.
func (g *Gate) balance(ctx context.Context, gateToken, address string) (uint64, error) {
	key := fmt.Sprintf("gate:bal:%s:%s", gateToken, address)
	if g.cache != nil {
		if v, err := g.cache.Get(ctx, key).Result(); err == nil {
			if n, perr := strconv.ParseUint(v, 10, 64); perr == nil {
				return n, nil
			}
		}
	}
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		bal, err := g.oracle.Balance(ctx, gateToken, address)
		if err == nil {
			if g.cache != nil {
				_ = g.cache.Set(ctx, key, strconv.FormatUint(bal, 10), g.cacheTTL).Err()
			}
			return bal, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}
