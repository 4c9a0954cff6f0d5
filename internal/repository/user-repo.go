package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

type Userrepo struct {
	db *pgxpool.Pool
}

func NewUserrepo(db *pgxpool.Pool) *Userrepo {
	return &Userrepo{db: db}
}

func (ur *Userrepo) Create(ctx context.Context, u *types.User) error {
	const q = `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at;`

	return ur.db.QueryRow(ctx, q, u.Name, u.Email, u.Password, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (ur *Userrepo) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	const q = `
		SELECT id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1;`

	return scanUser(ur.db.QueryRow(ctx, q, email))
}

func (ur *Userrepo) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	const q = `
		SELECT id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE id = $1;`

	return scanUser(ur.db.QueryRow(ctx, q, id))
}

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
