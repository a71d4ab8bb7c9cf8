package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sqlc-dev/pqtype"
)

type walletRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatorID int64     `db:"creator_id"`
	Currency  string    `db:"currency"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type memberRow struct {
	WalletID uuid.UUID `db:"wallet_id"`
	UserID   int64     `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type eventRow struct {
	ID                  int64                `db:"id"`
	WalletID            uuid.UUID            `db:"wallet_id"`
	MemberID            int64                `db:"member_id"`
	Kind                string               `db:"kind"`
	Amount              decimal.Decimal      `db:"amount"`
	OccurredAt          time.Time            `db:"occurred_at"`
	SourceTransactionID string               `db:"source_transaction_id"`
	Metadata            pqtype.NullRawMessage `db:"metadata"`
	CreatedAt           time.Time            `db:"created_at"`
}

// WalletSummary is the list-view projection. Its balance comes from a SQL
// aggregate over the event log, independent of any snapshot arithmetic.
type WalletSummary struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Currency     string          `db:"currency" json:"currency"`
	Status       string          `db:"status" json:"status"`
	MemberCount  int             `db:"member_count" json:"member_count"`
	TotalBalance decimal.Decimal `db:"total_balance" json:"total_balance"`
}

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) InsertWallet(ctx context.Context, tx *sqlx.Tx, w *SharedWallet) error {
	const query = `
		INSERT INTO shared_wallets (id, name, creator_id, currency, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, w.ID, w.Name, w.CreatorID, w.Currency, string(w.Status)); err != nil {
		return err
	}

	for _, m := range w.Members {
		if err := r.InsertMember(ctx, tx, w.ID, m.UserID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) InsertMember(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, userID int64) error {
	const query = `
		INSERT INTO wallet_members (wallet_id, user_id)
		VALUES ($1, $2)
	`
	if _, err := tx.ExecContext(ctx, query, walletID, userID); err != nil {
		if db.IsDuplicate(err) {
			return ErrMemberExists
		}
		return err
	}
	return nil
}

// GetWalletMeta loads identity, membership and status with zeroed balances;
// callers replay the event log to obtain a snapshot.
func (r *Repository) GetWalletMeta(ctx context.Context, q sqlx.ExtContext, walletID uuid.UUID, forUpdate bool) (*SharedWallet, error) {
	query := `
		SELECT id, name, creator_id, currency, status, created_at, updated_at
		FROM shared_wallets
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row walletRow
	if err := sqlx.GetContext(ctx, q, &row, query, walletID); err != nil {
		if err == sql.ErrNoRows {
			return nil, NewLedgerError(ErrWalletNotFound, walletID.String())
		}
		return nil, err
	}

	const membersQuery = `
		SELECT wallet_id, user_id, joined_at
		FROM wallet_members
		WHERE wallet_id = $1
		ORDER BY joined_at, user_id
	`
	memberRows := []memberRow{}
	if err := sqlx.SelectContext(ctx, q, &memberRows, membersQuery, walletID); err != nil {
		return nil, err
	}

	members := make([]Member, len(memberRows))
	for i, m := range memberRows {
		members[i] = Member{UserID: m.UserID}
	}

	return &SharedWallet{
		ID:        row.ID,
		Name:      row.Name,
		CreatorID: row.CreatorID,
		Members:   members,
		Currency:  row.Currency,
		Status:    WalletStatus(row.Status),
	}, nil
}

// ListEvents returns the wallet's full log in replay order.
func (r *Repository) ListEvents(ctx context.Context, q sqlx.ExtContext, walletID uuid.UUID) ([]LedgerEvent, error) {
	const query = `
		SELECT id, wallet_id, member_id, kind, amount, occurred_at,
		       source_transaction_id, metadata, created_at
		FROM ledger_events
		WHERE wallet_id = $1
		ORDER BY occurred_at, source_transaction_id
	`

	rows := []eventRow{}
	if err := sqlx.SelectContext(ctx, q, &rows, query, walletID); err != nil {
		return nil, err
	}

	events := make([]LedgerEvent, len(rows))
	for i, row := range rows {
		events[i] = LedgerEvent{
			WalletID:            row.WalletID,
			MemberID:            row.MemberID,
			Kind:                EventKind(row.Kind),
			Amount:              row.Amount,
			Timestamp:           row.OccurredAt,
			SourceTransactionID: row.SourceTransactionID,
		}
	}
	return events, nil
}

func (r *Repository) InsertEvent(ctx context.Context, tx *sqlx.Tx, e LedgerEvent, metadata json.RawMessage) error {
	const query = `
		INSERT INTO ledger_events (wallet_id, member_id, kind, amount, occurred_at, source_transaction_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	meta := pqtype.NullRawMessage{}
	if len(metadata) > 0 {
		meta = pqtype.NullRawMessage{RawMessage: metadata, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, query, e.WalletID, e.MemberID, string(e.Kind), e.Amount, e.Timestamp, e.SourceTransactionID, meta); err != nil {
		if db.IsDuplicate(err) {
			return NewLedgerError(ErrDuplicateEvent, e.WalletID.String())
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateWalletStatus(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, status WalletStatus) error {
	const query = `
		UPDATE shared_wallets
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, walletID, string(status))
	return err
}

// ListWalletsForUser builds the list view. The balance aggregate folds the
// event log in SQL, which doubles as an independent check on the snapshot
// arithmetic.
func (r *Repository) ListWalletsForUser(ctx context.Context, userID int64) ([]WalletSummary, error) {
	const query = `
		SELECT w.id, w.name, w.currency, w.status,
		       (SELECT COUNT(*) FROM wallet_members m2 WHERE m2.wallet_id = w.id) AS member_count,
		       COALESCE((
		           SELECT SUM(CASE WHEN e.kind = 'contribution' THEN e.amount ELSE -e.amount END)
		           FROM ledger_events e
		           WHERE e.wallet_id = w.id
		       ), 0) AS total_balance
		FROM shared_wallets w
		JOIN wallet_members m ON m.wallet_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at DESC
	`

	summaries := []WalletSummary{}
	if err := r.store.SelectContext(ctx, &summaries, query, userID); err != nil {
		return nil, err
	}
	return summaries, nil
}
