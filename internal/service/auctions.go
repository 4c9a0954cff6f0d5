package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/repository"
	"github.com/rifat-hossain/bidhaus/internal/types"
	"github.com/rifat-hossain/bidhaus/pkg/logger"
)

type AuctionServicer interface {
	CreateAuction(ctx context.Context, a *types.Auction) error
	UpdateAuction(ctx context.Context, auctionID, merchantID uuid.UUID, upd AuctionUpdate) (*types.Auction, error)
	DeleteAuction(ctx context.Context, auctionID, merchantID uuid.UUID) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]types.Auction, error)
	AdminList(ctx context.Context, status, approval string) ([]types.Auction, error)
	Approve(ctx context.Context, auctionID uuid.UUID, approval string, reason *types.RejectionReason) error
	CheckAvailability(ctx context.Context, productID uuid.UUID, quantity int) (Availability, error)
}

// AuctionUpdate carries the merchant-editable fields; nil pointers leave a
// field unchanged.
type AuctionUpdate struct {
	Title         *string
	Description   *string
	Category      *string
	Images        []string
	ReservedPrice *float64
	BidIncrement  *float64
	StartTime     *time.Time
	EndTime       *time.Time
}

type Availability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type AuctionService struct {
	auctions AuctionStore
	products ProductStore
	sched    Scheduler
	log      *logger.Logger
}

func NewAuctionService(auctions AuctionStore, products ProductStore, sched Scheduler, log *logger.Logger) *AuctionService {
	return &AuctionService{
		auctions: auctions,
		products: products,
		sched:    sched,
		log:      log,
	}
}

// CreateAuction persists a merchant submission and registers its lifecycle
// timers. New auctions always enter as pending/pending regardless of caller
// input.
func (as *AuctionService) CreateAuction(ctx context.Context, a *types.Auction) error {
	if !a.EndTime.After(a.StartTime) {
		return ErrInvalidWindow
	}
	if a.BidIncrement <= 0 {
		a.BidIncrement = 1
	}
	if a.TotalQuantity <= 0 {
		a.TotalQuantity = 1
	}
	a.RemainingQuantity = a.TotalQuantity
	if a.PaymentDuration <= 0 {
		a.PaymentDuration = 24
	}

	if a.ProductID.Valid {
		avail, err := as.CheckAvailability(ctx, a.ProductID.UUID, a.TotalQuantity)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !avail.Available {
			return &AvailabilityError{Message: avail.Message}
		}
	}

	a.Status = types.AuctionPending
	a.AdminApproval = types.ApprovalPending

	if err := as.auctions.Create(ctx, a); err != nil {
		return fmt.Errorf("create auction: %w", err)
	}

	as.sched.ScheduleStart(*a)
	as.sched.ScheduleEnd(*a)
	return nil
}

// UpdateAuction applies a merchant edit under the state-machine guard:
// edits are only allowed while the auction is pending and not yet approved.
// Every successful edit re-opens moderation, and a changed start/end time
// replaces the corresponding timer.
func (as *AuctionService) UpdateAuction(ctx context.Context, auctionID, merchantID uuid.UUID, upd AuctionUpdate) (*types.Auction, error) {
	a, err := as.ownedAuction(ctx, auctionID, merchantID)
	if err != nil {
		return nil, err
	}
	if !a.Editable() {
		return nil, ErrAuctionNotEditable
	}

	startChanged, endChanged := false, false
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.Category != nil {
		a.Category = *upd.Category
	}
	if upd.Images != nil {
		a.Images = upd.Images
	}
	if upd.ReservedPrice != nil {
		a.ReservedPrice = *upd.ReservedPrice
	}
	if upd.BidIncrement != nil {
		a.BidIncrement = *upd.BidIncrement
	}
	if upd.StartTime != nil && !upd.StartTime.Equal(a.StartTime) {
		a.StartTime = *upd.StartTime
		startChanged = true
	}
	if upd.EndTime != nil && !upd.EndTime.Equal(a.EndTime) {
		a.EndTime = *upd.EndTime
		endChanged = true
	}

	if !a.EndTime.After(a.StartTime) {
		return nil, ErrInvalidWindow
	}
	if a.BidIncrement <= 0 {
		return nil, fmt.Errorf("bid increment must be positive")
	}

	if err := as.auctions.UpdateFields(ctx, a); err != nil {
		return nil, fmt.Errorf("update auction: %w", err)
	}

	if startChanged {
		as.sched.ScheduleStart(*a)
	}
	if endChanged {
		as.sched.ScheduleEnd(*a)
	}
	return a, nil
}

func (as *AuctionService) DeleteAuction(ctx context.Context, auctionID, merchantID uuid.UUID) error {
	a, err := as.ownedAuction(ctx, auctionID, merchantID)
	if err != nil {
		return err
	}
	if !a.Deletable() {
		return ErrAuctionNotDeletable
	}
	if err := as.auctions.Delete(ctx, auctionID); err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}
	as.sched.Cancel(auctionID)
	return nil
}

func (as *AuctionService) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]types.Auction, error) {
	return as.auctions.ListByMerchant(ctx, merchantID)
}

func (as *AuctionService) AdminList(ctx context.Context, status, approval string) ([]types.Auction, error) {
	return as.auctions.ListFiltered(ctx, status, approval)
}

// Approve records the moderation decision. Approval does not flip the
// auction straight to active: the pending -> active transition stays gated
// on the start time, so an approved future-dated auction only goes live when
// its window opens. Rejection keeps the auction pending so the merchant can
// edit and resubmit.
func (as *AuctionService) Approve(ctx context.Context, auctionID uuid.UUID, approval string, reason *types.RejectionReason) error {
	if approval != types.ApprovalApproved && approval != types.ApprovalRejected {
		return fmt.Errorf("invalid approval decision %q", approval)
	}

	if _, err := as.auctions.GetByID(ctx, auctionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAuctionNotFound
		}
		return fmt.Errorf("load auction: %w", err)
	}

	if approval != types.ApprovalRejected {
		reason = nil
	}
	decided, err := as.auctions.SetApproval(ctx, auctionID, approval, reason)
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	if !decided {
		return ErrApprovalDecided
	}

	if approval == types.ApprovalApproved {
		a, err := as.auctions.GetByID(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("reload auction: %w", err)
		}
		// Both timers must be registered here: an auction that was still
		// unapproved at the last restart is invisible to Restore, so this
		// is its only chance to get an end timer. Past-due start times
		// fire immediately; future ones wait.
		as.sched.ScheduleStart(*a)
		as.sched.ScheduleEnd(*a)
	}
	return nil
}

// CheckAvailability consults the product catalog at auction creation time.
func (as *AuctionService) CheckAvailability(ctx context.Context, productID uuid.UUID, quantity int) (Availability, error) {
	p, err := as.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Availability{Available: false, Message: "Product not found"}, nil
		}
		return Availability{}, err
	}

	if quantity <= 0 {
		if p.Quantity > 0 {
			return Availability{Available: true, Message: "Product is in stock"}, nil
		}
		return Availability{Available: false, Message: "Product is out of stock"}, nil
	}

	if quantity <= p.Quantity {
		return Availability{Available: true, Message: "Requested quantity is available"}, nil
	}
	return Availability{Available: false, Message: "Requested quantity exceeds available stock"}, nil
}

func (as *AuctionService) ownedAuction(ctx context.Context, auctionID, merchantID uuid.UUID) (*types.Auction, error) {
	a, err := as.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("load auction: %w", err)
	}
	if a.MerchantID != merchantID {
		return nil, ErrNotOwner
	}
	return a, nil
}
