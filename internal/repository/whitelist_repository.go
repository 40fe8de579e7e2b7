package repository

import (
	"context"
	"database/sql"
	"strings"
)

// WhitelistRepo persists per-event whitelists in the event_whitelist
// table.  Entries are keyed (event_id, address); inserts and deletes are
// idempotent so repeated edits by an organizer never error.
type WhitelistRepo struct {
	db *sql.DB
}

// NewWhitelistRepo returns a new WhitelistRepo bound to the given database.
func NewWhitelistRepo(db *sql.DB) *WhitelistRepo { return &WhitelistRepo{db: db} }

// AddTx inserts the addresses for eventID in a single statement inside
// the transaction.  INSERT IGNORE makes re-adding an existing address a
// no-op.  Passing an empty slice has no effect.
func (r *WhitelistRepo) AddTx(ctx context.Context, tx *sql.Tx, eventID uint64, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO event_whitelist (event_id, address) VALUES `
	args := make([]interface{}, 0, len(addresses)*2)
	for i, a := range addresses {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, eventID, a)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// RemoveTx deletes the addresses for eventID inside the transaction.
// Absent addresses simply match no rows.
func (r *WhitelistRepo) RemoveTx(ctx context.Context, tx *sql.Tx, eventID uint64, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	placeholders := make([]string, len(addresses))
	args := make([]interface{}, 0, len(addresses)+1)
	args = append(args, eventID)
	for i, a := range addresses {
		placeholders[i] = "?"
		args = append(args, a)
	}
	query := `DELETE FROM event_whitelist WHERE event_id = ? AND address IN (` +
		strings.Join(placeholders, ",") + `)`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// IsWhitelisted reports whether address is on the event's whitelist.
func (r *WhitelistRepo) IsWhitelisted(ctx context.Context, eventID uint64, address string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_whitelist WHERE event_id = ? AND address = ?)`,
		eventID, address).Scan(&exists)
	return exists, err
}
