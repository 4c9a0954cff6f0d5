package types

import (
	"time"

	"github.com/google/uuid"
)

// Per-entry status inside a ledger. An entry is active while it matches the
// highest bid, outbid once superseded, and won only after the auction ends.
const (
	BidActive = "active"
	BidOutbid = "outbid"
	BidWon    = "won"
)

// Bidder is the identity attached to a placed bid.
type Bidder struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type BidEntry struct {
	BidderID    uuid.UUID `json:"bidder_id"`
	BidderName  string    `json:"bidder_name"`
	BidderEmail string    `json:"bidder_email"`
	Amount      float64   `json:"amount"`
	PlacedAt    time.Time `json:"placed_at"`
	Status      string    `json:"status"`
}

// BidLedger is the single per-auction bid document: the full entry list plus
// derived fields. The derived fields are never trusted from callers; they are
// recomputed from the entries on every save.
type BidLedger struct {
	AuctionID       uuid.UUID  `json:"auction_id"`
	Bids            []BidEntry `json:"bids"`
	HighestBid      float64    `json:"highest_bid"`
	HighestBidderID uuid.UUID  `json:"highest_bidder_id"`
	TotalBids       int        `json:"total_bids"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewBidLedger(auctionID uuid.UUID) *BidLedger {
	return &BidLedger{AuctionID: auctionID, Bids: []BidEntry{}}
}

// CurrentHighest returns the highest bid amount, or the starting price when
// the ledger is still empty.
func (l *BidLedger) CurrentHighest(startingPrice float64) float64 {
	if len(l.Bids) == 0 {
		return startingPrice
	}
	return l.HighestBid
}

// Upsert records a bid for a bidder. A bidder holds at most one entry per
// auction: a later bid replaces the earlier one in place instead of
// appending a duplicate. Reports whether an existing entry was replaced.
func (l *BidLedger) Upsert(entry BidEntry) bool {
	for i := range l.Bids {
		if l.Bids[i].BidderID == entry.BidderID {
			l.Bids[i].Amount = entry.Amount
			l.Bids[i].PlacedAt = entry.PlacedAt
			return true
		}
	}
	l.Bids = append(l.Bids, entry)
	return false
}

// Recompute derives highestBid, highestBidder and totalBids from the entries
// alone, and reclassifies every entry as active or outbid. Must be called as
// part of every save so a stale read can never corrupt the derived state.
// Entries already marked won are left untouched.
func (l *BidLedger) Recompute() {
	if len(l.Bids) == 0 {
		l.HighestBid = 0
		l.HighestBidderID = uuid.Nil
		l.TotalBids = 0
		return
	}

	highest := l.Bids[0]
	for _, b := range l.Bids[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	l.HighestBid = highest.Amount
	l.HighestBidderID = highest.BidderID
	l.TotalBids = len(l.Bids)

	for i := range l.Bids {
		if l.Bids[i].Status == BidWon {
			continue
		}
		if l.Bids[i].Amount == l.HighestBid {
			l.Bids[i].Status = BidActive
		} else {
			l.Bids[i].Status = BidOutbid
		}
	}
}

// Winner returns the highest entry, or false when the ledger is empty.
func (l *BidLedger) Winner() (BidEntry, bool) {
	if len(l.Bids) == 0 {
		return BidEntry{}, false
	}
	for _, b := range l.Bids {
		if b.BidderID == l.HighestBidderID {
			return b, true
		}
	}
	return BidEntry{}, false
}

// Finalize marks the winning entry won and every other entry outbid. Called
// once the auction has ended; safe to call again.
func (l *BidLedger) Finalize() {
	l.Recompute()
	for i := range l.Bids {
		if l.Bids[i].BidderID == l.HighestBidderID {
			l.Bids[i].Status = BidWon
		} else {
			l.Bids[i].Status = BidOutbid
		}
	}
}

// ParticipantIDs returns the distinct bidder ids present in the ledger.
func (l *BidLedger) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.Bids))
	for _, b := range l.Bids {
		ids = append(ids, b.BidderID)
	}
	return ids
}
