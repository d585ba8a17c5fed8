package datastore

import (
	"context"
	"fmt"

	"flashplan/models"

	"github.com/jmoiron/sqlx"
)

const insertNotificationQuery = `
	INSERT INTO notifications (id, user_id, type, title, message, time, read, created_at)
	VALUES (:id, :user_id, :type, :title, :message, :time, :read, :created_at)
`

// NotificationRepository is the per-user mailbox. Every mutation is
// scoped by the owning user id.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return insertNotification(ctx, r.db, n)
}

func insertNotification(ctx context.Context, ext sqlx.ExtContext, n *models.Notification) error {
	if _, err := sqlx.NamedExecContext(ctx, ext, insertNotificationQuery, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := `
		SELECT id, user_id, type, title, message, time, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	if err := r.db.SelectContext(ctx, &notifications, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications read. ErrNotFound when
// the id does not exist or belongs to someone else.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE notifications SET read = ? WHERE id = ? AND user_id = ?`),
		true, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireOneRow(res)
}

// MarkAllRead returns how many notifications changed state.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE notifications SET read = ? WHERE user_id = ? AND read = ?`),
		true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.RowsAffected()
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM notifications WHERE id = ? AND user_id = ?`),
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireOneRow(res)
}
