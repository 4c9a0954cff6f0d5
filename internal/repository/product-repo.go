package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

type Productrepo struct {
	db *pgxpool.Pool
}

func NewProductrepo(db *pgxpool.Pool) *Productrepo {
	return &Productrepo{db: db}
}

func (pr *Productrepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	const q = `SELECT id, name, quantity FROM products WHERE id = $1;`

	var p types.Product
	err := pr.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
