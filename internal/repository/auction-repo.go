package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

var ErrNotFound = errors.New("repository: not found")

const auctionColumns = `
	id, title, product_id, merchant_id, description, condition, category,
	images, starting_price, reserved_price, bid_increment, total_quantity,
	remaining_quantity, payment_duration, start_time, end_time, status,
	admin_approval, rejection_category, rejection_detail, created_at, updated_at`

type Auctionrepo struct {
	db *pgxpool.Pool
}

func NewAuctionrepo(db *pgxpool.Pool) *Auctionrepo {
	return &Auctionrepo{db: db}
}

func scanAuction(row pgx.Row) (*types.Auction, error) {
	var (
		a           types.Auction
		rejCategory *string
		rejDetail   *string
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.ProductID, &a.MerchantID, &a.Description,
		&a.Condition, &a.Category, &a.Images, &a.StartingPrice,
		&a.ReservedPrice, &a.BidIncrement, &a.TotalQuantity,
		&a.RemainingQuantity, &a.PaymentDuration, &a.StartTime, &a.EndTime,
		&a.Status, &a.AdminApproval, &rejCategory, &rejDetail,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rejCategory != nil || rejDetail != nil {
		reason := types.RejectionReason{}
		if rejCategory != nil {
			reason.Category = *rejCategory
		}
		if rejDetail != nil {
			reason.Description = *rejDetail
		}
		a.RejectionReason = &reason
	}
	return &a, nil
}

func (ar *Auctionrepo) Create(ctx context.Context, a *types.Auction) error {
	const q = `
		INSERT INTO auctions (
			title, product_id, merchant_id, description, condition, category,
			images, starting_price, reserved_price, bid_increment,
			total_quantity, remaining_quantity, payment_duration,
			start_time, end_time, status, admin_approval
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at;`

	return ar.db.QueryRow(ctx, q,
		a.Title, a.ProductID, a.MerchantID, a.Description, a.Condition,
		a.Category, a.Images, a.StartingPrice, a.ReservedPrice,
		a.BidIncrement, a.TotalQuantity, a.RemainingQuantity,
		a.PaymentDuration, a.StartTime, a.EndTime, a.Status, a.AdminApproval,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (ar *Auctionrepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Auction, error) {
	q := `SELECT` + auctionColumns + ` FROM auctions WHERE id = $1;`
	return scanAuction(ar.db.QueryRow(ctx, q, id))
}

func (ar *Auctionrepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]types.Auction, error) {
	q := `SELECT` + auctionColumns + ` FROM auctions WHERE merchant_id = $1 ORDER BY created_at DESC;`
	rows, err := ar.db.Query(ctx, q, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuctions(rows)
}

// ListFiltered serves the admin console listing; empty filter values match
// everything.
func (ar *Auctionrepo) ListFiltered(ctx context.Context, status, approval string) ([]types.Auction, error) {
	q := `SELECT` + auctionColumns + `
		FROM auctions
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR admin_approval = $2)
		ORDER BY created_at DESC;`
	rows, err := ar.db.Query(ctx, q, status, approval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuctions(rows)
}

func collectAuctions(rows pgx.Rows) ([]types.Auction, error) {
	auctions := []types.Auction{}
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, *a)
	}
	return auctions, rows.Err()
}

// UpdateFields persists an edited auction. The caller has already applied the
// edit guard; this write re-opens moderation by resetting admin approval.
func (ar *Auctionrepo) UpdateFields(ctx context.Context, a *types.Auction) error {
	const q = `
		UPDATE auctions
		SET title = $2, description = $3, category = $4, images = $5,
		    reserved_price = $6, bid_increment = $7, start_time = $8,
		    end_time = $9, admin_approval = 'pending',
		    rejection_category = NULL, rejection_detail = NULL,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at;`

	err := ar.db.QueryRow(ctx, q,
		a.ID, a.Title, a.Description, a.Category, a.Images,
		a.ReservedPrice, a.BidIncrement, a.StartTime, a.EndTime,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	a.AdminApproval = types.ApprovalPending
	a.RejectionReason = nil
	return err
}

func (ar *Auctionrepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := ar.db.Exec(ctx, `DELETE FROM auctions WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus flips the lifecycle status only when the current status is in
// the expected set, so two concurrent writers can never clobber each other's
// transition. Reports whether the flip landed.
func (ar *Auctionrepo) UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	const q = `
		UPDATE auctions
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = ANY($2);`

	tag, err := ar.db.Exec(ctx, q, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetApproval records the admin decision; only a pending approval may be
// decided, so a second concurrent decision is a no-op.
func (ar *Auctionrepo) SetApproval(ctx context.Context, id uuid.UUID, approval string, reason *types.RejectionReason) (bool, error) {
	var (
		rejCategory *string
		rejDetail   *string
	)
	if reason != nil {
		rejCategory = &reason.Category
		rejDetail = &reason.Description
	}

	const q = `
		UPDATE auctions
		SET admin_approval = $2, rejection_category = $3, rejection_detail = $4,
		    updated_at = now()
		WHERE id = $1 AND admin_approval = 'pending';`

	tag, err := ar.db.Exec(ctx, q, id, approval, rejCategory, rejDetail)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DueAuctions returns every auction that may still need a scheduled
// transition: approved pending auctions waiting on their start time, and
// active auctions waiting on their end time. The scheduler replays these at
// startup so timers survive restarts.
func (ar *Auctionrepo) DueAuctions(ctx context.Context) ([]types.Auction, error) {
	q := `SELECT` + auctionColumns + `
		FROM auctions
		WHERE (status = 'pending' AND admin_approval = 'approved')
		   OR status = 'active'
		ORDER BY end_time;`
	rows, err := ar.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuctions(rows)
}
