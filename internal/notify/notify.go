package notify

import (
	"context"

	"github.com/rifat-hossain/bidhaus/internal/types"
)

// Notifier is the notification sink consumed by the bidding flow. Calls are
// fire-and-forget: failures are logged by the caller and never abort the
// operation that produced the notification.
type Notifier interface {
	Notify(ctx context.Context, n types.Notification) error
}

// EmailSender is the best-effort email sink used for bid broadcasts.
type EmailSender interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}
