package group

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/WeSplit-io/WeSplit-Backend/db"
)

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

const groupColumns = `id, name, creator_id, COALESCE(icon, '') AS icon, created_at`

// CreateGroup inserts the group and its creator membership in one
// transaction.
func (r *Repository) CreateGroup(ctx context.Context, name string, creatorID int64, icon string) (*Group, error) {
	var saved Group
	err := r.store.ExecTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO groups (name, creator_id, icon)
			VALUES ($1, $2, NULLIF($3, ''))
			RETURNING ` + groupColumns

		if err := tx.GetContext(ctx, &saved, query, name, creatorID, icon); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, saved.ID, creatorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID int64) (*Group, error) {
	var g Group
	err := r.store.GetContext(ctx, &g, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	return &g, nil
}

func (r *Repository) ListGroupsForUser(ctx context.Context, userID int64) ([]Group, error) {
	query := `
		SELECT g.id, g.name, g.creator_id, COALESCE(g.icon, '') AS icon, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC
	`

	groups := []Group{}
	if err := r.store.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *Repository) AddMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.store.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, groupID, userID)
	if err != nil {
		if db.IsDuplicate(err) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *Repository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	if err := r.store.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repository) InsertInvite(ctx context.Context, groupID, createdBy int64, expiresAt time.Time) (*Invite, error) {
	query := `
		INSERT INTO group_invites (group_id, created_by, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, created_by, expires_at, created_at
	`

	var inv Invite
	if err := r.store.GetContext(ctx, &inv, query, groupID, createdBy, expiresAt); err != nil {
		return nil, err
	}

	return &inv, nil
}

func (r *Repository) GetInvite(ctx context.Context, inviteID int64) (*Invite, error) {
	var inv Invite
	query := `SELECT id, group_id, created_by, expires_at, created_at FROM group_invites WHERE id = $1`
	if err := r.store.GetContext(ctx, &inv, query, inviteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	return &inv, nil
}

func (r *Repository) InvitePreview(ctx context.Context, inviteID int64) (*InvitePreview, error) {
	query := `
		SELECT i.group_id,
		       g.name AS group_name,
		       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = i.group_id) AS member_count,
		       i.expires_at
		FROM group_invites i
		JOIN groups g ON g.id = i.group_id
		WHERE i.id = $1
	`

	var preview InvitePreview
	if err := r.store.GetContext(ctx, &preview, query, inviteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	return &preview, nil
}

// DeleteExpiredInvites clears stale invites; the scheduler runs it daily.
func (r *Repository) DeleteExpiredInvites(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.store.ExecContext(ctx, `DELETE FROM group_invites WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
