package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// NotificationRepo handles per-user alerts.
type NotificationRepo struct {
	db sqlx.ExtContext
}

func NewNotificationRepo(db sqlx.ExtContext) *NotificationRepo { return &NotificationRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *NotificationRepo) WithTx(tx *sqlx.Tx) *NotificationRepo { return &NotificationRepo{db: tx} }

func (r *NotificationRepo) Insert(ctx context.Context, n Notification) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
	INSERT INTO notifications(id, recipient_username, message, created_at, read)
	VALUES (:id, :recipient_username, :message, :created_at, :read)`, n)
	return errors.Wrap(err, "insert notification")
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipient string) ([]Notification, error) {
	var out []Notification
	err := sqlx.SelectContext(ctx, r.db, &out, `
	SELECT id, recipient_username, message, created_at, read
	FROM notifications WHERE recipient_username = ?
	ORDER BY created_at DESC, rowid DESC`, recipient)
	return out, errors.Wrap(err, "list notifications")
}

func (r *NotificationRepo) CountUnread(ctx context.Context, recipient string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `
	SELECT COUNT(*) FROM notifications WHERE recipient_username = ? AND read = 0`, recipient)
	return n, errors.Wrap(err, "count unread notifications")
}

// MarkRead reports false when no notification with id belongs to recipient.
func (r *NotificationRepo) MarkRead(ctx context.Context, recipient, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE notifications SET read = 1 WHERE id = ? AND recipient_username = ?`, id, recipient)
	if err != nil {
		return false, errors.Wrap(err, "mark notification read")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "mark notification read")
	}
	return n == 1, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE notifications SET read = 1 WHERE recipient_username = ? AND read = 0`, recipient)
	if err != nil {
		return 0, errors.Wrap(err, "mark all notifications read")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "mark all notifications read")
}
