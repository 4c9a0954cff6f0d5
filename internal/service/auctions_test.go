package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/events"
	"github.com/rifat-hossain/bidhaus/internal/scheduler"
	"github.com/rifat-hossain/bidhaus/internal/types"
	"github.com/rifat-hossain/bidhaus/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auctionEnv struct {
	svc      *AuctionService
	auctions *fakeAuctionStore
	products *fakeProductStore
	sched    *fakeScheduler
}

func newAuctionEnv(t *testing.T, auctions ...*types.Auction) *auctionEnv {
	t.Helper()
	store := newFakeAuctionStore(auctions...)
	products := &fakeProductStore{products: make(map[uuid.UUID]*types.Product)}
	sched := &fakeScheduler{}
	svc := NewAuctionService(store, products, sched, logger.NewNop())
	return &auctionEnv{svc: svc, auctions: store, products: products, sched: sched}
}

func pendingAuction(merchantID uuid.UUID) *types.Auction {
	now := time.Now()
	return &types.Auction{
		ID:            uuid.New(),
		Title:         "Vintage Camera",
		MerchantID:    merchantID,
		StartingPrice: 100,
		BidIncrement:  10,
		TotalQuantity: 1,
		Status:        types.AuctionPending,
		AdminApproval: types.ApprovalPending,
		StartTime:     now.Add(time.Hour),
		EndTime:       now.Add(2 * time.Hour),
	}
}

func TestCreateAuction(t *testing.T) {
	env := newAuctionEnv(t)
	now := time.Now()

	a := &types.Auction{
		Title:         "Vintage Camera",
		MerchantID:    uuid.New(),
		StartingPrice: 100,
		StartTime:     now.Add(time.Hour),
		EndTime:       now.Add(2 * time.Hour),
		// Caller-supplied status must be overridden.
		Status:        types.AuctionActive,
		AdminApproval: types.ApprovalApproved,
	}

	require.NoError(t, env.svc.CreateAuction(context.Background(), a))

	assert.Equal(t, types.AuctionPending, a.Status)
	assert.Equal(t, types.ApprovalPending, a.AdminApproval)
	assert.Equal(t, 1.0, a.BidIncrement, "increment defaults when omitted")
	assert.Equal(t, 1, a.TotalQuantity)
	assert.Equal(t, a.TotalQuantity, a.RemainingQuantity)

	assert.Equal(t, []uuid.UUID{a.ID}, env.sched.starts)
	assert.Equal(t, []uuid.UUID{a.ID}, env.sched.ends)
}

func TestCreateAuctionInvalidWindow(t *testing.T) {
	env := newAuctionEnv(t)
	now := time.Now()
	a := &types.Auction{
		Title:      "Vintage Camera",
		MerchantID: uuid.New(),
		StartTime:  now.Add(2 * time.Hour),
		EndTime:    now.Add(time.Hour),
	}
	assert.ErrorIs(t, env.svc.CreateAuction(context.Background(), a), ErrInvalidWindow)
	assert.Empty(t, env.sched.starts)
}

func TestCreateAuctionProductAvailability(t *testing.T) {
	env := newAuctionEnv(t)
	productID := uuid.New()
	env.products.products[productID] = &types.Product{ID: productID, Name: "Camera", Quantity: 2}

	now := time.Now()
	base := types.Auction{
		Title:      "Vintage Camera",
		MerchantID: uuid.New(),
		ProductID:  uuid.NullUUID{UUID: productID, Valid: true},
		StartTime:  now.Add(time.Hour),
		EndTime:    now.Add(2 * time.Hour),
	}

	ok := base
	ok.TotalQuantity = 2
	require.NoError(t, env.svc.CreateAuction(context.Background(), &ok))

	over := base
	over.TotalQuantity = 5
	err := env.svc.CreateAuction(context.Background(), &over)
	var unavailable *AvailabilityError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Requested quantity exceeds available stock", unavailable.Message)

	missing := base
	missing.ProductID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
	missing.TotalQuantity = 1
	err = env.svc.CreateAuction(context.Background(), &missing)
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Product not found", unavailable.Message)
}

func TestUpdateAuction(t *testing.T) {
	merchant := uuid.New()
	a := pendingAuction(merchant)
	env := newAuctionEnv(t, a)

	title := "Rare Vintage Camera"
	newEnd := a.EndTime.Add(time.Hour)
	updated, err := env.svc.UpdateAuction(context.Background(), a.ID, merchant, AuctionUpdate{
		Title:   &title,
		EndTime: &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, newEnd.Equal(updated.EndTime))

	// Only the changed end timer is re-registered.
	assert.Empty(t, env.sched.starts)
	assert.Equal(t, []uuid.UUID{a.ID}, env.sched.ends)

	// Every edit re-opens moderation.
	stored, err := env.auctions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ApprovalPending, stored.AdminApproval)
}

func TestUpdateAuctionGuards(t *testing.T) {
	merchant := uuid.New()

	t.Run("not owner", func(t *testing.T) {
		a := pendingAuction(merchant)
		env := newAuctionEnv(t, a)
		_, err := env.svc.UpdateAuction(context.Background(), a.ID, uuid.New(), AuctionUpdate{})
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("approved is locked", func(t *testing.T) {
		a := pendingAuction(merchant)
		a.AdminApproval = types.ApprovalApproved
		env := newAuctionEnv(t, a)
		_, err := env.svc.UpdateAuction(context.Background(), a.ID, merchant, AuctionUpdate{})
		assert.ErrorIs(t, err, ErrAuctionNotEditable)
	})

	t.Run("active is locked", func(t *testing.T) {
		a := pendingAuction(merchant)
		a.Status = types.AuctionActive
		a.AdminApproval = types.ApprovalApproved
		env := newAuctionEnv(t, a)
		_, err := env.svc.UpdateAuction(context.Background(), a.ID, merchant, AuctionUpdate{})
		assert.ErrorIs(t, err, ErrAuctionNotEditable)
	})

	t.Run("rejected can be resubmitted", func(t *testing.T) {
		a := pendingAuction(merchant)
		a.AdminApproval = types.ApprovalRejected
		env := newAuctionEnv(t, a)
		title := "Fixed title"
		updated, err := env.svc.UpdateAuction(context.Background(), a.ID, merchant, AuctionUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
	})

	t.Run("invalid window", func(t *testing.T) {
		a := pendingAuction(merchant)
		env := newAuctionEnv(t, a)
		bad := a.StartTime.Add(-time.Minute)
		_, err := env.svc.UpdateAuction(context.Background(), a.ID, merchant, AuctionUpdate{EndTime: &bad})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestDeleteAuction(t *testing.T) {
	merchant := uuid.New()
	a := pendingAuction(merchant)
	env := newAuctionEnv(t, a)

	require.NoError(t, env.svc.DeleteAuction(context.Background(), a.ID, merchant))
	assert.Equal(t, []uuid.UUID{a.ID}, env.sched.cancelled)

	_, err := env.auctions.GetByID(context.Background(), a.ID)
	assert.Error(t, err)
}

func TestDeleteAuctionGuards(t *testing.T) {
	merchant := uuid.New()

	t.Run("approved cannot be deleted", func(t *testing.T) {
		a := pendingAuction(merchant)
		a.AdminApproval = types.ApprovalApproved
		env := newAuctionEnv(t, a)
		err := env.svc.DeleteAuction(context.Background(), a.ID, merchant)
		assert.ErrorIs(t, err, ErrAuctionNotDeletable)
	})

	t.Run("not owner", func(t *testing.T) {
		a := pendingAuction(merchant)
		env := newAuctionEnv(t, a)
		err := env.svc.DeleteAuction(context.Background(), a.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestApprove(t *testing.T) {
	a := pendingAuction(uuid.New())
	env := newAuctionEnv(t, a)
	ctx := context.Background()

	require.NoError(t, env.svc.Approve(ctx, a.ID, types.ApprovalApproved, nil))

	stored, err := env.auctions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ApprovalApproved, stored.AdminApproval)
	// Approval never flips status directly; activation waits for the start
	// timer.
	assert.Equal(t, types.AuctionPending, stored.Status)
	assert.Equal(t, []uuid.UUID{a.ID}, env.sched.starts)
	// The end timer must be registered here too: an auction approved after
	// a restart was invisible to the startup timer rebuild.
	assert.Equal(t, []uuid.UUID{a.ID}, env.sched.ends)

	// A second decision on the same auction is refused.
	err = env.svc.Approve(ctx, a.ID, types.ApprovalRejected, nil)
	assert.ErrorIs(t, err, ErrApprovalDecided)
}

func TestApproveReject(t *testing.T) {
	a := pendingAuction(uuid.New())
	env := newAuctionEnv(t, a)
	ctx := context.Background()

	reason := &types.RejectionReason{Category: "quality", Description: "blurry photos"}
	require.NoError(t, env.svc.Approve(ctx, a.ID, types.ApprovalRejected, reason))

	stored, err := env.auctions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ApprovalRejected, stored.AdminApproval)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "quality", stored.RejectionReason.Category)
	assert.Empty(t, env.sched.starts, "rejection must not register a start timer")

	// A rejected auction stays pending so the merchant can edit it.
	assert.Equal(t, types.AuctionPending, stored.Status)
	assert.True(t, stored.Editable())
}

func TestApproveUnknownAuction(t *testing.T) {
	env := newAuctionEnv(t)
	err := env.svc.Approve(context.Background(), uuid.New(), types.ApprovalApproved, nil)
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

// emptySource mimics a restart that happened while every auction was still
// unapproved: the startup timer rebuild finds nothing due.
type emptySource struct{}

func (emptySource) DueAuctions(ctx context.Context) ([]types.Auction, error) {
	return nil, nil
}

type approvalEnv struct {
	svc      *AuctionService
	auctions *fakeAuctionStore
	bus      *fakeBus
	sched    *scheduler.Scheduler
}

// newApprovalEnv wires the real scheduler to the real lifecycle service, with
// the timer table rebuilt from an empty due-set first.
func newApprovalEnv(t *testing.T, a *types.Auction, merchant *types.User) *approvalEnv {
	t.Helper()
	auctions := newFakeAuctionStore(a)
	ledgers := newFakeLedgerStore()
	users := newFakeUserStore(merchant)
	bus := &fakeBus{}
	log := logger.NewNop()

	lifecycle := NewLifecycleService(auctions, ledgers, users, &fakeEmailSender{}, bus, log)
	sched := scheduler.New(lifecycle, log)
	t.Cleanup(sched.Stop)
	require.NoError(t, sched.Restore(context.Background(), emptySource{}))

	products := &fakeProductStore{products: make(map[uuid.UUID]*types.Product)}
	svc := NewAuctionService(auctions, products, sched, log)
	return &approvalEnv{svc: svc, auctions: auctions, bus: bus, sched: sched}
}

// An auction approved only after a restart must still get its end
// transition: approval is its one chance to register the end timer.
func TestApproveAfterRestartEndsAuction(t *testing.T) {
	now := time.Now()
	merchant := &types.User{ID: uuid.New(), Email: "merchant@example.com"}
	a := pendingAuction(merchant.ID)
	a.StartTime = now.Add(-time.Minute)
	a.EndTime = now.Add(150 * time.Millisecond)
	env := newApprovalEnv(t, a, merchant)
	ctx := context.Background()

	require.NoError(t, env.svc.Approve(ctx, a.ID, types.ApprovalApproved, nil))

	// The start timer activates it at once; the end timer must then land.
	require.Eventually(t, func() bool {
		stored, err := env.auctions.GetByID(ctx, a.ID)
		return err == nil && stored.Status == types.AuctionEnded
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(env.bus.byType(events.EventAuctionEnded)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// An approval landing after the auction's window already closed must not
// leave it permanently active: activation is gated on the end time, so the
// auction stays pending.
func TestApproveExpiredAuctionStaysPending(t *testing.T) {
	now := time.Now()
	merchant := &types.User{ID: uuid.New(), Email: "merchant@example.com"}
	a := pendingAuction(merchant.ID)
	a.StartTime = now.Add(-2 * time.Hour)
	a.EndTime = now.Add(-time.Hour)
	env := newApprovalEnv(t, a, merchant)
	ctx := context.Background()

	require.NoError(t, env.svc.Approve(ctx, a.ID, types.ApprovalApproved, nil))

	assert.Never(t, func() bool {
		stored, err := env.auctions.GetByID(ctx, a.ID)
		return err == nil && stored.Status == types.AuctionActive
	}, 300*time.Millisecond, 20*time.Millisecond)

	stored, err := env.auctions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AuctionPending, stored.Status)
	assert.Equal(t, types.ApprovalApproved, stored.AdminApproval)
}
