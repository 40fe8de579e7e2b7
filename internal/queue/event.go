// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketPurchasedEvent is published after a purchase commits.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type TicketPurchasedEvent struct {
	TokenIDs    []uint64 `json:"token_ids"`
	EventID     uint64   `json:"event_id"`
	EventName   string   `json:"event_name"`
	Buyer       string   `json:"buyer"`
	Quantity    uint32   `json:"quantity"`
	PaidWei     string   `json:"paid_wei"`
	PurchasedAt string   `json:"purchased_at"`
}

// TicketTransferredEvent is published after an ownership transfer commits.
type TicketTransferredEvent struct {
	TokenID       uint64 `json:"token_id"`
	EventID       uint64 `json:"event_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	TransferredAt string `json:"transferred_at"`
}
