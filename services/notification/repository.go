package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/sqlc-dev/pqtype"
)

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

const notificationColumns = `
	id, user_id, type, title, body, data, read,
	COALESCE(action_taken, '') AS action_taken,
	created_at
`

func (r *Repository) Insert(ctx context.Context, userID int64, notifType, title, body string, data json.RawMessage) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, title, body, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING` + notificationColumns

	payload := pqtype.NullRawMessage{}
	if len(data) > 0 {
		payload = pqtype.NullRawMessage{RawMessage: data, Valid: true}
	}

	var n Notification
	if err := r.store.GetContext(ctx, &n, query, userID, notifType, title, body, payload); err != nil {
		return nil, err
	}

	return &n, nil
}

func (r *Repository) GetByID(ctx context.Context, userID, notificationID int64) (*Notification, error) {
	query := `SELECT` + notificationColumns + `FROM notifications WHERE id = $1 AND user_id = $2`

	var n Notification
	if err := r.store.GetContext(ctx, &n, query, notificationID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	return &n, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	query := `
		SELECT` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	notifications := []Notification{}
	if err := r.store.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *Repository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

	var count int64
	if err := r.store.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	result, err := r.store.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`

	result, err := r.store.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// TakeAction records the user's response on a notification exactly once.
// The action_taken IS NULL predicate is the cross-device backstop: whichever
// device commits first wins, every later attempt falls through to the
// already-taken branch regardless of which process it raced through.
func (r *Repository) TakeAction(ctx context.Context, userID, notificationID int64, action string) (*Notification, error) {
	query := `
		UPDATE notifications
		SET action_taken = $3, read = TRUE
		WHERE id = $1 AND user_id = $2 AND action_taken IS NULL
		RETURNING` + notificationColumns

	var n Notification
	err := r.store.GetContext(ctx, &n, query, notificationID, userID, action)
	if err == nil {
		return &n, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// No row matched: either the notification does not exist for this user
	// or its action was already recorded.
	if _, lookupErr := r.GetByID(ctx, userID, notificationID); lookupErr != nil {
		return nil, lookupErr
	}

	return nil, ErrActionAlreadyTaken
}

func (r *Repository) Delete(ctx context.Context, userID, notificationID int64) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	result, err := r.store.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// DeleteOlderThan clears read notifications past the retention window.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE read = TRUE AND created_at < $1`

	result, err := r.store.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
