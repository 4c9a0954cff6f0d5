package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

type Bidrepo struct {
	db *pgxpool.Pool
}

func NewBidrepo(db *pgxpool.Pool) *Bidrepo {
	return &Bidrepo{db: db}
}

// Get loads the ledger for an auction; returns ErrNotFound when no bid has
// ever been placed.
func (br *Bidrepo) Get(ctx context.Context, auctionID uuid.UUID) (*types.BidLedger, error) {
	const q = `
		SELECT auction_id, bids, highest_bid, highest_bidder_id, total_bids,
		       created_at, updated_at
		FROM bid_ledgers
		WHERE auction_id = $1;`

	return scanLedger(br.db.QueryRow(ctx, q, auctionID))
}

// Update runs fn against the auction's ledger inside a transaction, creating
// the ledger lazily on first use. The ledger row is locked for the whole
// read-validate-write region, which serializes concurrent bids per auction;
// the derived fields are recomputed from the entries before the row is
// written back. When fn returns an error nothing is persisted.
func (br *Bidrepo) Update(ctx context.Context, auctionID uuid.UUID, fn func(l *types.BidLedger) error) (*types.BidLedger, error) {
	tx, err := br.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lazy creation keeps the first two concurrent bidders on one row.
	_, err = tx.Exec(ctx,
		`INSERT INTO bid_ledgers (auction_id) VALUES ($1)
		 ON CONFLICT (auction_id) DO NOTHING;`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("ensure ledger: %w", err)
	}

	const lockQ = `
		SELECT auction_id, bids, highest_bid, highest_bidder_id, total_bids,
		       created_at, updated_at
		FROM bid_ledgers
		WHERE auction_id = $1
		FOR UPDATE;`

	ledger, err := scanLedger(tx.QueryRow(ctx, lockQ, auctionID))
	if err != nil {
		return nil, fmt.Errorf("lock ledger: %w", err)
	}

	if err := fn(ledger); err != nil {
		return nil, err
	}
	ledger.Recompute()

	bidsJSON, err := json.Marshal(ledger.Bids)
	if err != nil {
		return nil, fmt.Errorf("encode bids: %w", err)
	}

	var bidder *uuid.UUID
	if ledger.HighestBidderID != uuid.Nil {
		bidder = &ledger.HighestBidderID
	}

	const saveQ = `
		UPDATE bid_ledgers
		SET bids = $2, highest_bid = $3, highest_bidder_id = $4,
		    total_bids = $5, updated_at = now()
		WHERE auction_id = $1
		RETURNING updated_at;`

	err = tx.QueryRow(ctx, saveQ, auctionID, bidsJSON, ledger.HighestBid,
		bidder, ledger.TotalBids).Scan(&ledger.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}
	return ledger, nil
}

func scanLedger(row pgx.Row) (*types.BidLedger, error) {
	var (
		l        types.BidLedger
		bidsJSON []byte
		bidder   *uuid.UUID
	)
	err := row.Scan(&l.AuctionID, &bidsJSON, &l.HighestBid, &bidder,
		&l.TotalBids, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(bidsJSON, &l.Bids); err != nil {
		return nil, fmt.Errorf("decode bids: %w", err)
	}
	if l.Bids == nil {
		l.Bids = []types.BidEntry{}
	}
	if bidder != nil {
		l.HighestBidderID = *bidder
	}
	return &l, nil
}
