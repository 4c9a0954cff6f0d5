package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/events"
	"github.com/rifat-hossain/bidhaus/internal/repository"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

// In-memory store fakes. They honor the same contracts as the repository
// package: ErrNotFound sentinels, conditional status flips and the ledger
// store's per-auction critical section with recompute-on-save.

type fakeAuctionStore struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*types.Auction
}

func newFakeAuctionStore(auctions ...*types.Auction) *fakeAuctionStore {
	s := &fakeAuctionStore{auctions: make(map[uuid.UUID]*types.Auction)}
	for _, a := range auctions {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		s.auctions[a.ID] = a
	}
	return s
}

func (s *fakeAuctionStore) Create(ctx context.Context, a *types.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *fakeAuctionStore) GetByID(ctx context.Context, id uuid.UUID) (*types.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAuctionStore) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]types.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Auction
	for _, a := range s.auctions {
		if a.MerchantID == merchantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAuctionStore) ListFiltered(ctx context.Context, status, approval string) ([]types.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Auction
	for _, a := range s.auctions {
		if status != "" && a.Status != status {
			continue
		}
		if approval != "" && a.AdminApproval != approval {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *fakeAuctionStore) UpdateFields(ctx context.Context, a *types.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.AdminApproval = types.ApprovalPending
	a.RejectionReason = nil
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *fakeAuctionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.auctions, id)
	return nil
}

func (s *fakeAuctionStore) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if a.Status == f {
			a.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAuctionStore) SetApproval(ctx context.Context, id uuid.UUID, approval string, reason *types.RejectionReason) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return false, nil
	}
	if a.AdminApproval != types.ApprovalPending {
		return false, nil
	}
	a.AdminApproval = approval
	a.RejectionReason = reason
	return true, nil
}

type fakeLedgerStore struct {
	mu      sync.Mutex
	ledgers map[uuid.UUID]*types.BidLedger
	// updateErr fails the next Update after fn runs, simulating a commit
	// failure so callers can assert no side effects fired.
	updateErr error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{ledgers: make(map[uuid.UUID]*types.BidLedger)}
}

func (s *fakeLedgerStore) Get(ctx context.Context, auctionID uuid.UUID) (*types.BidLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[auctionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	cp.Bids = append([]types.BidEntry(nil), l.Bids...)
	return &cp, nil
}

func (s *fakeLedgerStore) Update(ctx context.Context, auctionID uuid.UUID, fn func(l *types.BidLedger) error) (*types.BidLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[auctionID]
	if !ok {
		l = types.NewBidLedger(auctionID)
	}
	work := *l
	work.Bids = append([]types.BidEntry(nil), l.Bids...)

	if err := fn(&work); err != nil {
		return nil, err
	}
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	work.Recompute()
	s.ledgers[auctionID] = &work

	cp := work
	cp.Bids = append([]types.BidEntry(nil), work.Bids...)
	return &cp, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*types.User
	email map[string]*types.User
}

func newFakeUserStore(users ...*types.User) *fakeUserStore {
	s := &fakeUserStore{
		users: make(map[uuid.UUID]*types.User),
		email: make(map[string]*types.User),
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID] = u
		s.email[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, u *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
	s.email[u.Email] = u
	return nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.email[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type fakeProductStore struct {
	products map[uuid.UUID]*types.Product
}

func (s *fakeProductStore) GetByID(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []types.Notification
}

func (n *fakeNotifier) Notify(ctx context.Context, notif types.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
	return nil
}

func (n *fakeNotifier) byType(typ string) []types.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []types.Notification
	for _, s := range n.sent {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

type sentEmail struct {
	Recipients []string
	Subject    string
	Body       string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeEmailSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{Recipients: recipients, Subject: subject, Body: body})
	return nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(ctx context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, h events.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) byType(typ string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.published {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fakeScheduler struct {
	mu        sync.Mutex
	starts    []uuid.UUID
	ends      []uuid.UUID
	cancelled []uuid.UUID
}

func (f *fakeScheduler) ScheduleStart(a types.Auction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, a.ID)
}

func (f *fakeScheduler) ScheduleEnd(a types.Auction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ends = append(f.ends, a.ID)
}

func (f *fakeScheduler) Cancel(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
}
