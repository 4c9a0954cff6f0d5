package events

import (
	"context"

	"github.com/google/uuid"
)

// Event types delivered to auction rooms.
const (
	EventNewBid       = "newBid"
	EventOutbid       = "outbid"
	EventAuctionEnded = "auction_ended"
)

// Event is a single real-time auction event. Delivery is best-effort and
// at-most-once; clients treat events as hints and re-fetch the ledger for
// ground truth.
type Event struct {
	Type        string    `json:"type"`
	AuctionID   uuid.UUID `json:"auction_id"`
	BidAmount   float64   `json:"bid_amount,omitempty"`
	BidderID    uuid.UUID `json:"bidder_id,omitzero"`
	BidderName  string    `json:"bidder_name,omitempty"`
	BidderEmail string    `json:"bidder_email,omitempty"`
	// RecipientID targets outbid events at the displaced highest bidder.
	RecipientID uuid.UUID `json:"recipient_id,omitzero"`

	// auction_ended payload
	HighestBid  float64   `json:"highest_bid,omitempty"`
	WinnerID    uuid.UUID `json:"winner_id,omitzero"`
	WinnerName  string    `json:"winner_name,omitempty"`
	ReservedMet bool      `json:"reserved_met,omitempty"`
}

// Handler consumes events delivered by a Bus subscription.
type Handler func(Event)

// Bus carries auction events from the bid write path to the fanout layer.
type Bus interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe blocks, invoking h for every event until ctx is cancelled.
	Subscribe(ctx context.Context, h Handler) error
	Close() error
}
