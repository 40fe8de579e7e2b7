package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The wallet address identifies the user on the ticket ledger:
// it is the organizer identity for events the user creates and the owner
// identity for tickets the user buys.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hashed password.
//  WalletAddress – unique hex wallet address (0x + 40 hex digits).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64
	Email         string
	PasswordHash  string
	WalletAddress string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is persisted; the raw value is returned
// to the client once and never stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
