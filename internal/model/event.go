package model

import "time"

// Event represents an organizer-created ticketed occasion with a fixed
// price and capacity.  Every field except TicketsSold is immutable after
// creation.  TicketsSold is incremented only by committed purchases and
// never exceeds TicketSupply.
//
// Fields:
//  ID           – sequential identifier, assigned starting at 1.
//  Name         – display name, non-empty, bounded length.
//  Description  – free text, may be empty.
//  Date         – event start as Unix seconds.
//  PriceWei     – price per ticket in wei (smallest payment unit).
//  TicketSupply – total tickets available, always positive.
//  TicketsSold  – tickets sold so far, 0 <= TicketsSold <= TicketSupply.
//  Organizer    – wallet address of the creator.
//  IsTokenGated – whether purchase is restricted by the access gate.
//  GateToken    – address of the external collection used for the gate
//                 balance check; empty unless IsTokenGated is true.
//  MetadataHash – opaque off-chain metadata reference (e.g. an IPFS CID).
type Event struct {
	ID           uint64
	Name         string
	Description  string
	Date         int64
	PriceWei     uint64
	TicketSupply uint32
	TicketsSold  uint32
	Organizer    string
	IsTokenGated bool
	GateToken    string
	MetadataHash string
	CreatedAt    time.Time
}

// Remaining returns how many tickets are still available for sale.
func (e *Event) Remaining() uint32 {
	if e.TicketsSold >= e.TicketSupply {
		return 0
	}
	return e.TicketSupply - e.TicketsSold
}
