package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rifat-hossain/bidhaus/internal/types"
)

type Notificationrepo struct {
	db *pgxpool.Pool
}

func NewNotificationrepo(db *pgxpool.Pool) *Notificationrepo {
	return &Notificationrepo{db: db}
}

// Notify persists a notification row. Callers treat this as fire-and-forget;
// a failure here must never abort the operation that produced the event.
func (nr *Notificationrepo) Notify(ctx context.Context, n types.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("encode notification data: %w", err)
	}

	const q = `
		INSERT INTO notifications (user_id, type, title, description, data)
		VALUES ($1, $2, $3, $4, $5);`

	_, err = nr.db.Exec(ctx, q, n.UserID, n.Type, n.Title, n.Description, data)
	return err
}
