package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationBid    = "bid"
	NotificationOutbid = "outbid"
)

// NotificationData is the bid context attached to a notification row.
type NotificationData struct {
	AuctionID  uuid.UUID `json:"auction_id"`
	BidAmount  float64   `json:"bid_amount"`
	BidderName string    `json:"bidder_name"`
}

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Data        NotificationData `json:"data"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
