package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

// Store interfaces consumed by the services; implemented by
// internal/repository and by fakes in tests.

type AuctionStore interface {
	Create(ctx context.Context, a *types.Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Auction, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]types.Auction, error)
	ListFiltered(ctx context.Context, status, approval string) ([]types.Auction, error)
	UpdateFields(ctx context.Context, a *types.Auction) error
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateStatus flips status only when the stored value is in from,
	// reporting whether the flip landed.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
	SetApproval(ctx context.Context, id uuid.UUID, approval string, reason *types.RejectionReason) (bool, error)
}

type BidLedgerStore interface {
	Get(ctx context.Context, auctionID uuid.UUID) (*types.BidLedger, error)
	// Update applies fn to the auction's ledger under per-auction mutual
	// exclusion, recomputes the derived fields and persists the result as
	// one atomic step. When fn errors, nothing is written.
	Update(ctx context.Context, auctionID uuid.UUID, fn func(l *types.BidLedger) error) (*types.BidLedger, error)
}

type UserStore interface {
	Create(ctx context.Context, u *types.User) error
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type ProductStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.Product, error)
}

// Scheduler is the timer registry consulted by auction CRUD so edited end
// times replace rather than stack timers.
type Scheduler interface {
	ScheduleStart(a types.Auction)
	ScheduleEnd(a types.Auction)
	Cancel(id uuid.UUID)
}
