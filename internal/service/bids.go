package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/events"
	"github.com/rifat-hossain/bidhaus/internal/notify"
	"github.com/rifat-hossain/bidhaus/internal/repository"
	"github.com/rifat-hossain/bidhaus/internal/types"
	"github.com/rifat-hossain/bidhaus/pkg/logger"
)

type BidServicer interface {
	PlaceBid(ctx context.Context, auctionID uuid.UUID, bidder types.Bidder, amount float64) (PlaceBidResult, error)
	AuctionDetail(ctx context.Context, auctionID uuid.UUID) (*AuctionDetail, error)
}

type PlaceBidResult struct {
	HighestBid float64 `json:"highest_bid"`
	TotalBids  int     `json:"total_bids"`
	// Updated is true when the bidder raised an earlier bid instead of
	// placing a first one.
	Updated bool `json:"updated"`
}

// AuctionDetail merges auction fields with the ledger-derived state.
type AuctionDetail struct {
	types.Auction
	Bids       []types.BidEntry `json:"bids"`
	HighestBid float64          `json:"highest_bid"`
	TotalBids  int              `json:"total_bids"`
}

type BidService struct {
	auctions AuctionStore
	ledgers  BidLedgerStore
	notifier notify.Notifier
	email    notify.EmailSender
	bus      events.Bus
	log      *logger.Logger
}

func NewBidService(auctions AuctionStore, ledgers BidLedgerStore, notifier notify.Notifier, email notify.EmailSender, bus events.Bus, log *logger.Logger) *BidService {
	return &BidService{
		auctions: auctions,
		ledgers:  ledgers,
		notifier: notifier,
		email:    email,
		bus:      bus,
		log:      log,
	}
}

// PlaceBid admits a single bid against an active auction. The floor check,
// the capture of the previous highest bidder and the entry upsert all run
// inside the ledger store's per-auction critical section, so two concurrent
// bidders can never both believe they are the new highest without one
// observing the other's write. Side effects fire only after the ledger write
// has committed.
func (bs *BidService) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidder types.Bidder, amount float64) (PlaceBidResult, error) {
	a, err := bs.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return PlaceBidResult{}, ErrAuctionNotFound
		}
		return PlaceBidResult{}, fmt.Errorf("load auction: %w", err)
	}

	// Covers the stale-status window too: an auction past its endTime whose
	// scheduled flip has not landed yet is already not biddable.
	if !a.Biddable(time.Now()) {
		return PlaceBidResult{}, ErrAuctionNotActive
	}

	var (
		prevHighest uuid.UUID
		updated     bool
	)
	entry := types.BidEntry{
		BidderID:    bidder.ID,
		BidderName:  bidder.Name,
		BidderEmail: bidder.Email,
		Amount:      amount,
		PlacedAt:    time.Now().UTC(),
		Status:      types.BidActive,
	}

	ledger, err := bs.ledgers.Update(ctx, auctionID, func(l *types.BidLedger) error {
		currentHighest := l.CurrentHighest(a.StartingPrice)
		minBid := currentHighest + a.BidIncrement
		if amount < minBid {
			return &BidTooLowError{MinBid: minBid}
		}
		prevHighest = l.HighestBidderID
		updated = l.Upsert(entry)
		return nil
	})
	if err != nil {
		var tooLow *BidTooLowError
		if errors.As(err, &tooLow) {
			return PlaceBidResult{}, err
		}
		return PlaceBidResult{}, fmt.Errorf("persist bid: %w", err)
	}

	bs.afterBid(ctx, a, ledger, bidder, amount, prevHighest)

	return PlaceBidResult{
		HighestBid: ledger.HighestBid,
		TotalBids:  ledger.TotalBids,
		Updated:    updated,
	}, nil
}

// afterBid runs every post-persistence side effect. All of them are
// best-effort: a notification or email outage never fails the bid.
func (bs *BidService) afterBid(ctx context.Context, a *types.Auction, ledger *types.BidLedger, bidder types.Bidder, amount float64, prevHighest uuid.UUID) {
	data := types.NotificationData{
		AuctionID:  a.ID,
		BidAmount:  amount,
		BidderName: bidder.Name,
	}

	self := types.Notification{
		UserID:      bidder.ID,
		Type:        types.NotificationBid,
		Title:       "New Bid Placed",
		Description: fmt.Sprintf("You placed a bid of $%.2f on auction %s", amount, a.Title),
		Data:        data,
	}
	if err := bs.notifier.Notify(ctx, self); err != nil {
		bs.log.Warnw("[BID] bidder notification failed", "auction_id", a.ID, "error", err)
	}

	var emailRecipients []string
	for _, e := range ledger.Bids {
		if e.BidderID == bidder.ID {
			continue
		}
		emailRecipients = append(emailRecipients, e.BidderEmail)

		n := types.Notification{
			UserID: e.BidderID,
			Data:   data,
		}
		if e.BidderID == prevHighest {
			n.Type = types.NotificationOutbid
			n.Title = "You've been outbid"
			n.Description = fmt.Sprintf("%s outbid you with $%.2f on auction %s", bidder.Name, amount, a.Title)
		} else {
			n.Type = types.NotificationBid
			n.Title = "New Bid Placed"
			n.Description = fmt.Sprintf("%s placed a bid of $%.2f on auction %s", bidder.Name, amount, a.Title)
		}
		if err := bs.notifier.Notify(ctx, n); err != nil {
			bs.log.Warnw("[BID] participant notification failed", "auction_id", a.ID, "user_id", e.BidderID, "error", err)
		}
	}

	newBid := events.Event{
		Type:        events.EventNewBid,
		AuctionID:   a.ID,
		BidAmount:   amount,
		BidderID:    bidder.ID,
		BidderName:  bidder.Name,
		BidderEmail: bidder.Email,
	}
	if err := bs.bus.Publish(ctx, newBid); err != nil {
		bs.log.Warnw("[BID] newBid event publish failed", "auction_id", a.ID, "error", err)
	}

	if prevHighest != uuid.Nil && prevHighest != bidder.ID {
		outbid := newBid
		outbid.Type = events.EventOutbid
		outbid.RecipientID = prevHighest
		if err := bs.bus.Publish(ctx, outbid); err != nil {
			bs.log.Warnw("[BID] outbid event publish failed", "auction_id", a.ID, "error", err)
		}
	}

	if len(emailRecipients) > 0 {
		body := fmt.Sprintf("A new bid of $%.2f has been placed by %s on auction %s.", amount, bidder.Name, a.Title)
		if err := bs.email.Send(ctx, emailRecipients, "New Bid Placed!", body); err != nil {
			bs.log.Warnw("[BID] bid broadcast email failed", "auction_id", a.ID, "error", err)
		}
	}
}

// AuctionDetail returns the auction merged with its ledger state; an auction
// with no bids yet reports the starting price as the highest bid.
func (bs *BidService) AuctionDetail(ctx context.Context, auctionID uuid.UUID) (*AuctionDetail, error) {
	a, err := bs.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("load auction: %w", err)
	}

	detail := &AuctionDetail{
		Auction:    *a,
		Bids:       []types.BidEntry{},
		HighestBid: a.StartingPrice,
	}

	ledger, err := bs.ledgers.Get(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return detail, nil
		}
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	detail.Bids = ledger.Bids
	detail.HighestBid = ledger.CurrentHighest(a.StartingPrice)
	detail.TotalBids = ledger.TotalBids
	return detail, nil
}
