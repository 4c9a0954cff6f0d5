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

// LifecycleService owns the time-driven status transitions. The scheduler
// fires into it; every transition is an atomic conditional update so a
// replayed firing is a no-op rather than a double transition.
type LifecycleService struct {
	auctions AuctionStore
	ledgers  BidLedgerStore
	users    UserStore
	email    notify.EmailSender
	bus      events.Bus
	log      *logger.Logger
}

func NewLifecycleService(auctions AuctionStore, ledgers BidLedgerStore, users UserStore, email notify.EmailSender, bus events.Bus, log *logger.Logger) *LifecycleService {
	return &LifecycleService{
		auctions: auctions,
		ledgers:  ledgers,
		users:    users,
		email:    email,
		bus:      bus,
		log:      log,
	}
}

// ActivateAuction flips an approved auction to active once its start time
// has arrived. Unapproved, already-active or deleted auctions are left
// alone.
func (ls *LifecycleService) ActivateAuction(ctx context.Context, auctionID uuid.UUID) error {
	a, err := ls.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load auction: %w", err)
	}
	if !a.ActivationDue(time.Now()) {
		return nil
	}

	_, err = ls.auctions.UpdateStatus(ctx, auctionID, []string{types.AuctionPending}, types.AuctionActive)
	if err != nil {
		return fmt.Errorf("activate auction: %w", err)
	}
	return nil
}

// EndAuction closes an active auction: the status flip, then ledger
// finalization, participant email and the auction_ended room event. Only the
// winner of the conditional flip runs the follow-up work, which keeps the
// whole path idempotent.
func (ls *LifecycleService) EndAuction(ctx context.Context, auctionID uuid.UUID) error {
	flipped, err := ls.auctions.UpdateStatus(ctx, auctionID, []string{types.AuctionActive}, types.AuctionEnded)
	if err != nil {
		return fmt.Errorf("end auction: %w", err)
	}
	if !flipped {
		// Already ended or cancelled, or never activated.
		return nil
	}

	a, err := ls.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("load auction: %w", err)
	}

	ledger, err := ls.ledgers.Get(ctx, auctionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load ledger: %w", err)
	}

	if ledger == nil || len(ledger.Bids) == 0 {
		ls.closeWithoutBids(ctx, a)
		return nil
	}

	ledger, err = ls.ledgers.Update(ctx, auctionID, func(l *types.BidLedger) error {
		l.Finalize()
		return nil
	})
	if err != nil {
		return fmt.Errorf("finalize ledger: %w", err)
	}

	winner, _ := ledger.Winner()
	reservedMet := ledger.HighestBid >= a.ReservedPrice

	var body string
	if reservedMet {
		body = fmt.Sprintf("The auction for %s has ended. The winner is %s with a bid of $%.2f.",
			a.Title, winner.BidderName, ledger.HighestBid)
	} else {
		body = fmt.Sprintf("The auction for %s has ended with no winner (reserved price of $%.2f not met). The highest bid was $%.2f.",
			a.Title, a.ReservedPrice, ledger.HighestBid)
	}

	recipients := make([]string, 0, len(ledger.Bids))
	for _, b := range ledger.Bids {
		recipients = append(recipients, b.BidderEmail)
	}
	if err := ls.email.Send(ctx, recipients, "Auction Ended!", body); err != nil {
		ls.log.Warnw("[LIFECYCLE] auction-ended email failed", "auction_id", auctionID, "error", err)
	}

	ended := events.Event{
		Type:        events.EventAuctionEnded,
		AuctionID:   auctionID,
		HighestBid:  ledger.HighestBid,
		WinnerID:    winner.BidderID,
		WinnerName:  winner.BidderName,
		ReservedMet: reservedMet,
	}
	if err := ls.bus.Publish(ctx, ended); err != nil {
		ls.log.Warnw("[LIFECYCLE] auction_ended event publish failed", "auction_id", auctionID, "error", err)
	}
	return nil
}

func (ls *LifecycleService) closeWithoutBids(ctx context.Context, a *types.Auction) {
	if merchant, err := ls.users.GetByID(ctx, a.MerchantID); err == nil {
		body := fmt.Sprintf("The auction for %s has ended with no bids.", a.Title)
		if err := ls.email.Send(ctx, []string{merchant.Email}, "Auction Ended!", body); err != nil {
			ls.log.Warnw("[LIFECYCLE] merchant email failed", "auction_id", a.ID, "error", err)
		}
	} else {
		ls.log.Warnw("[LIFECYCLE] merchant lookup failed", "auction_id", a.ID, "error", err)
	}

	ended := events.Event{
		Type:      events.EventAuctionEnded,
		AuctionID: a.ID,
	}
	if err := ls.bus.Publish(ctx, ended); err != nil {
		ls.log.Warnw("[LIFECYCLE] auction_ended event publish failed", "auction_id", a.ID, "error", err)
	}
}
