package user_service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/WeSplit-io/WeSplit-Backend/db"
)

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

const userColumns = `
	id, name, email,
	COALESCE(phone_number, '') AS phone_number,
	hashed_password,
	COALESCE(wallet_address, '') AS wallet_address,
	COALESCE(avatar_url, '') AS avatar_url,
	role, verified, created_at, updated_at
`

func (r *Repository) CreateUser(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (name, email, phone_number, hashed_password)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING` + userColumns

	var saved User
	err := r.store.GetContext(ctx, &saved, query, u.Name, u.Email, u.PhoneNumber, u.HashedPassword)
	if err != nil {
		if db.IsDuplicate(err) {
			return nil, NewUserError(ErrUserAlreadyExists, u.Email, err)
		}
		return nil, err
	}

	return &saved, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.store.GetContext(ctx, &u, `SELECT`+userColumns+`FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := r.store.GetContext(ctx, &u, `SELECT`+userColumns+`FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID int64, name, avatarURL string) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    avatar_url = COALESCE(NULLIF($3, ''), avatar_url),
		    updated_at = now()
		WHERE id = $1
		RETURNING` + userColumns

	var u User
	if err := r.store.GetContext(ctx, &u, query, userID, name, avatarURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UpdateWalletAddress(ctx context.Context, userID int64, walletAddress string) (*User, error) {
	query := `
		UPDATE users
		SET wallet_address = $2, updated_at = now()
		WHERE id = $1
		RETURNING` + userColumns

	var u User
	if err := r.store.GetContext(ctx, &u, query, userID, walletAddress); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpsertPushToken keeps one row per (user, token); re-registering a device
// refreshes its platform tag.
func (r *Repository) UpsertPushToken(ctx context.Context, userID int64, token, platform string) (*PushToken, error) {
	query := `
		INSERT INTO user_push_tokens (user_id, expo_push_token, platform)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (user_id, expo_push_token)
		DO UPDATE SET platform = EXCLUDED.platform
		RETURNING id, user_id, expo_push_token, COALESCE(platform, '') AS platform, created_at
	`

	var saved PushToken
	if err := r.store.GetContext(ctx, &saved, query, userID, token, platform); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *Repository) DeletePushToken(ctx context.Context, userID int64, token string) error {
	_, err := r.store.ExecContext(ctx, `DELETE FROM user_push_tokens WHERE user_id = $1 AND expo_push_token = $2`, userID, token)
	return err
}

// PushTokensFor returns every registered device token for the given users.
func (r *Repository) PushTokensFor(ctx context.Context, userIDs []int64) ([]PushToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, user_id, expo_push_token, COALESCE(platform, '') AS platform, created_at
		FROM user_push_tokens
		WHERE user_id IN (?)
	`, userIDs)
	if err != nil {
		return nil, err
	}

	tokens := []PushToken{}
	if err := r.store.SelectContext(ctx, &tokens, r.store.Rebind(query), args...); err != nil {
		return nil, err
	}

	return tokens, nil
}
