package types

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle status of an auction. Transitions are
// pending -> active -> ended, or pending -> cancelled.
const (
	AuctionPending   = "pending"
	AuctionActive    = "active"
	AuctionEnded     = "ended"
	AuctionCancelled = "cancelled"
)

// Admin moderation gate, independent of the time-driven lifecycle.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

type RejectionReason struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

type Auction struct {
	ID                uuid.UUID        `json:"id"`
	Title             string           `json:"title"`
	ProductID         uuid.NullUUID    `json:"product_id,omitzero"`
	MerchantID        uuid.UUID        `json:"merchant_id"`
	Description       string           `json:"description"`
	Condition         string           `json:"condition"`
	Category          string           `json:"category"`
	Images            []string         `json:"images"`
	StartingPrice     float64          `json:"starting_price"`
	ReservedPrice     float64          `json:"reserved_price"`
	BidIncrement      float64          `json:"bid_increment"`
	TotalQuantity     int              `json:"total_quantity"`
	RemainingQuantity int              `json:"remaining_quantity"`
	PaymentDuration   int              `json:"payment_duration"` // hours
	StartTime         time.Time        `json:"start_time"`
	EndTime           time.Time        `json:"end_time"`
	Status            string           `json:"status"`
	AdminApproval     string           `json:"admin_approval"`
	RejectionReason   *RejectionReason `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Biddable reports whether a bid may be accepted right now. The stored
// status alone is not trusted: an auction whose endTime has passed but whose
// status flip has not landed yet must still reject bids.
func (a *Auction) Biddable(now time.Time) bool {
	if a.Status != AuctionActive || a.AdminApproval != ApprovalApproved {
		return false
	}
	if now.Before(a.StartTime) {
		return false
	}
	return now.Before(a.EndTime)
}

// Editable reports whether the owning merchant may still change auction
// terms. Once approved, or once the lifecycle has left pending, the terms
// are locked.
func (a *Auction) Editable() bool {
	if a.Status != AuctionPending {
		return false
	}
	return a.AdminApproval == ApprovalPending || a.AdminApproval == ApprovalRejected
}

// Deletable reports whether the owning merchant may remove the auction.
func (a *Auction) Deletable() bool {
	return a.AdminApproval == ApprovalPending
}

// ActivationDue reports whether the pending -> active flip is due. An
// auction whose window has already closed is never activated; it stays
// pending rather than going active with no end transition left to fire.
func (a *Auction) ActivationDue(now time.Time) bool {
	return a.Status == AuctionPending &&
		a.AdminApproval == ApprovalApproved &&
		!now.Before(a.StartTime) &&
		now.Before(a.EndTime)
}
