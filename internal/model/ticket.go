package model

import "time"

// Ticket is a uniquely identified, transferable ownership record tied to
// one event and one current holder.  TokenID is globally monotonic across
// all events.  Tickets are never deleted; a transfer changes Owner in
// place and preserves TokenID and EventID.
type Ticket struct {
	TokenID  uint64
	EventID  uint64
	Owner    string
	MintedAt time.Time
}
