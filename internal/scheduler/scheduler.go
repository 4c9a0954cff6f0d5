package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rifat-hossain/bidhaus/internal/types"
	"github.com/rifat-hossain/bidhaus/pkg/logger"
)

// Transitioner applies the time-driven status flips. Both operations are
// idempotent: a timer that fires twice, or fires for an auction that already
// moved on, must be a no-op.
type Transitioner interface {
	ActivateAuction(ctx context.Context, auctionID uuid.UUID) error
	EndAuction(ctx context.Context, auctionID uuid.UUID) error
}

// Source lists the auctions that may still owe a transition, so the timer
// table can be rebuilt after a restart.
type Source interface {
	DueAuctions(ctx context.Context) ([]types.Auction, error)
}

// Scheduler keeps one-shot start/end timers per auction. It is an explicitly
// constructed service with a defined lifecycle, injected where needed; the
// timer table is the only shared state and is guarded by the mutex.
//
// Durability comes from the auctions table itself: Restore re-derives every
// timer from persisted start/end times, so no transition is lost to a
// process restart. Reads additionally self-defend (see Auction.Biddable) in
// case a firing is missed entirely.
type Scheduler struct {
	mu      sync.Mutex
	starts  map[uuid.UUID]*time.Timer
	ends    map[uuid.UUID]*time.Timer
	tr      Transitioner
	log     *logger.Logger
	timeout time.Duration
	stopped bool
}

func New(tr Transitioner, log *logger.Logger) *Scheduler {
	return &Scheduler{
		starts:  make(map[uuid.UUID]*time.Timer),
		ends:    make(map[uuid.UUID]*time.Timer),
		tr:      tr,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// Restore rebuilds the timer table from the store. Called once at startup,
// before the server accepts traffic.
func (s *Scheduler) Restore(ctx context.Context, src Source) error {
	auctions, err := src.DueAuctions(ctx)
	if err != nil {
		return err
	}
	for _, a := range auctions {
		if a.Status == types.AuctionPending {
			s.ScheduleStart(a)
		}
		s.ScheduleEnd(a)
	}
	s.log.Infow("[SCHEDULER] timers restored", "count", len(auctions))
	return nil
}

// ScheduleStart registers the pending -> active timer. Re-invoking for the
// same auction replaces the previous timer. A past-due start fires
// immediately.
func (s *Scheduler) ScheduleStart(a types.Auction) {
	s.schedule(s.starts, a.ID, time.Until(a.StartTime), s.tr.ActivateAuction)
}

// ScheduleEnd registers the active -> ended timer, replacing any previously
// registered end timer for this auction so an edited end time never leaves a
// stale duplicate behind. A past-due end fires immediately.
func (s *Scheduler) ScheduleEnd(a types.Auction) {
	s.schedule(s.ends, a.ID, time.Until(a.EndTime), s.tr.EndAuction)
}

func (s *Scheduler) schedule(table map[uuid.UUID]*time.Timer, id uuid.UUID, delay time.Duration, fire func(context.Context, uuid.UUID) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if prev, ok := table[id]; ok {
		prev.Stop()
	}
	if delay < 0 {
		delay = 0
	}

	table[id] = time.AfterFunc(delay, func() {
		s.forget(table, id)

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := fire(ctx, id); err != nil {
			// One auction's failure must not halt the scheduler.
			s.log.Errorw("[SCHEDULER] transition failed", "auction_id", id, "error", err)
		}
	})
}

func (s *Scheduler) forget(table map[uuid.UUID]*time.Timer, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(table, id)
}

// Cancel drops both timers for an auction. Used when an auction is deleted
// or cancelled.
func (s *Scheduler) Cancel(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.starts[id]; ok {
		t.Stop()
		delete(s.starts, id)
	}
	if t, ok := s.ends[id]; ok {
		t.Stop()
		delete(s.ends, id)
	}
}

// Stop halts every timer. Part of graceful shutdown; pending transitions are
// picked up again by Restore on the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true

	for id, t := range s.starts {
		t.Stop()
		delete(s.starts, id)
	}
	for id, t := range s.ends {
		t.Stop()
		delete(s.ends, id)
	}
}

// Pending reports the number of registered timers, for tests and health
// reporting.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.starts) + len(s.ends)
}
