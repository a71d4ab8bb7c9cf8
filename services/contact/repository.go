package contact

import (
	"context"
	"database/sql"
	"errors"

	"github.com/WeSplit-io/WeSplit-Backend/db"
)

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

const contactColumns = `
	id, owner_id, name, wallet_address,
	COALESCE(email, '') AS email,
	favorite, created_at, updated_at
`

func (r *Repository) Insert(ctx context.Context, c *Contact) (*Contact, error) {
	query := `
		INSERT INTO contacts (owner_id, name, wallet_address, email, favorite)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING` + contactColumns

	var saved Contact
	err := r.store.GetContext(ctx, &saved, query, c.OwnerID, c.Name, c.WalletAddress, c.Email, c.Favorite)
	if err != nil {
		if db.IsDuplicate(err) {
			return nil, ErrContactExists
		}
		return nil, err
	}

	return &saved, nil
}

func (r *Repository) GetByID(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	query := `SELECT` + contactColumns + `FROM contacts WHERE id = $1 AND owner_id = $2`

	var c Contact
	if err := r.store.GetContext(ctx, &c, query, contactID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Contact, error) {
	query := `
		SELECT` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		ORDER BY favorite DESC, name ASC
	`

	contacts := []Contact{}
	if err := r.store.SelectContext(ctx, &contacts, query, ownerID); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *Repository) Search(ctx context.Context, ownerID int64, term string) ([]Contact, error) {
	query := `
		SELECT` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		  AND (name ILIKE '%' || $2 || '%' OR wallet_address ILIKE $2 || '%')
		ORDER BY favorite DESC, name ASC
	`

	contacts := []Contact{}
	if err := r.store.SelectContext(ctx, &contacts, query, ownerID, term); err != nil {
		return nil, err
	}

	return contacts, nil
}

// SetFavorite flips nothing itself; it writes the given state and returns
// the stored row.
func (r *Repository) SetFavorite(ctx context.Context, ownerID, contactID int64, favorite bool) (*Contact, error) {
	query := `
		UPDATE contacts
		SET favorite = $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING` + contactColumns

	var c Contact
	if err := r.store.GetContext(ctx, &c, query, contactID, ownerID, favorite); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *Repository) Delete(ctx context.Context, ownerID, contactID int64) error {
	res, err := r.store.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`, contactID, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrContactNotFound
	}
	return nil
}
