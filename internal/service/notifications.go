package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jask/stockflow/internal/database"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/logging"
)

// NotificationService is the per-user alert queue.
type NotificationService struct {
	Notifications *repository.NotificationRepo
	Log           log.FieldLogger
}

func newNotification(recipient, message string, now time.Time) repository.Notification {
	return repository.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Message:   message,
		CreatedAt: now,
	}
}

// Notify appends message to recipient's queue.
func (s *NotificationService) Notify(ctx context.Context, recipient, message string) (*repository.Notification, error) {
	message = strings.TrimSpace(message)
	if recipient == "" || message == "" {
		return nil, domain.ErrMissingFields
	}
	n := newNotification(recipient, message, database.Now())
	if err := s.Notifications.Insert(ctx, n); err != nil {
		return nil, err
	}
	logging.Or(s.Log).WithField("recipient", recipient).Debug("notification queued")
	return &n, nil
}

// List returns username's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, username string) ([]repository.Notification, error) {
	return s.Notifications.ListByRecipient(ctx, username)
}

// Unread counts username's unread notifications.
func (s *NotificationService) Unread(ctx context.Context, username string) (int, error) {
	return s.Notifications.CountUnread(ctx, username)
}

// MarkRead marks one of username's notifications read. Other users'
// notifications are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, username, id string) error {
	ok, err := s.Notifications.MarkRead(ctx, username, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, username string) (int, error) {
	n, err := s.Notifications.MarkAllRead(ctx, username)
	return int(n), err
}
