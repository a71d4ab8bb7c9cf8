package transaction

import (
	"context"

	"github.com/WeSplit-io/WeSplit-Backend/db"
)

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]Record, error) {
	query := `
		SELECT id, user_id, tx_type, amount, currency, status,
		       COALESCE(user_name, '') AS user_name,
		       COALESCE(sender_name, '') AS sender_name,
		       COALESCE(recipient_name, '') AS recipient_name,
		       COALESCE(from_wallet, '') AS from_wallet,
		       COALESCE(to_wallet, '') AS to_wallet,
		       COALESCE(split_id, '') AS split_id,
		       COALESCE(split_wallet_id, '') AS split_wallet_id,
		       COALESCE(split_name, '') AS split_name,
		       external_card, external_wallet,
		       COALESCE(memo, '') AS memo,
		       created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	records := []Record{}
	if err := r.store.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *Repository) Insert(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO transactions (
			id, user_id, tx_type, amount, currency, status,
			user_name, sender_name, recipient_name,
			from_wallet, to_wallet,
			split_id, split_wallet_id, split_name,
			external_card, external_wallet, memo, created_at
		) VALUES (
			:id, :user_id, :tx_type, :amount, :currency, :status,
			:user_name, :sender_name, :recipient_name,
			:from_wallet, :to_wallet,
			:split_id, :split_wallet_id, :split_name,
			:external_card, :external_wallet, :memo, :created_at
		)
	`

	if _, err := r.store.NamedExecContext(ctx, query, rec); err != nil {
		if db.IsDuplicate(err) {
			return ErrRecordExists
		}
		return err
	}

	return nil
}
