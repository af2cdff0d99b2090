package notifications

import (
	"context"
	"log/slog"
)

// Mailer sends a copy of a notification out of band. Implementations are
// best-effort; failures are logged and swallowed.
type Mailer interface {
	Send(ctx context.Context, userID, subject, body string) error
}

type Service struct {
	store  *Store
	mailer Mailer
}

func NewService(store *Store, mailer Mailer) *Service {
	return &Service{store: store, mailer: mailer}
}

// Create records an in-app notification and optionally mails it. It never
// returns an error: notification failure must not fail the operation that
// triggered it.
func (s *Service) Create(ctx context.Context, input CreateInput) {
	if input.UserID == "" {
		return
	}
	if err := s.store.Create(ctx, input); err != nil {
		slog.Warn("create notification failed", "userId", input.UserID, "kind", input.Kind, "err", err)
		return
	}
	if s.mailer != nil {
		if err := s.mailer.Send(ctx, input.UserID, input.Title, input.Body); err != nil {
			slog.Warn("send notification email failed", "userId", input.UserID, "err", err)
		}
	}
}

// CreateMany fans one notification out to several users.
func (s *Service) CreateMany(ctx context.Context, userIDs []string, input CreateInput) {
	for _, userID := range userIDs {
		input.UserID = userID
		s.Create(ctx, input)
	}
}

func (s *Service) List(ctx context.Context, tenantID, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	return s.store.List(ctx, tenantID, userID, unreadOnly, limit)
}

func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.UnreadCount(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, id string) error {
	return s.store.MarkRead(ctx, tenantID, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, tenantID, userID string) error {
	return s.store.MarkAllRead(ctx, tenantID, userID)
}
