package port

import (
	"context"
	"time"
)

// Mailer delivers outbound email. Implementations are best-effort; workflow
// callers log failures instead of propagating them.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SessionStore tracks live auth sessions so tokens can be revoked on logout
type SessionStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Notice is a notification delivery request
type Notice struct {
	RecipientID string
	CompanyID   string
	Kind        string
	Title       string
	Message     string
}

// Notifier dispatches in-app plus email notifications, fire-and-forget
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}
