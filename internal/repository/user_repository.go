package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mintgate/event-platform/internal/model"
	"github.com/mintgate/event-platform/internal/utils"
)

// ErrEmailExists is returned when registering with an email already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrAddressExists is returned when registering with a wallet address
// already bound to another account.
var ErrAddressExists = errors.New("wallet address already exists")

// UserRepo persists user accounts.  The wallet address column carries a
// unique index; it is the identity used on the ticket ledger.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The password is hashed
// here so callers never handle the hash directly.
func (r *UserRepo) Create(ctx context.Context, email, password, walletAddress string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, wallet_address) VALUES (?,?,?)",
		email, hash, walletAddress)
	if err != nil {
		// MySQL duplicate-key errors carry code 1062; the message names
		// the violated index.
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "wallet") {
				return 0, ErrAddressExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,wallet_address,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.WalletAddress, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,wallet_address,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.WalletAddress, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
