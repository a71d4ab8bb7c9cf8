package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/WeSplit-io/WeSplit-Backend/services/ledger"
)

type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

const invoiceColumns = `
	id, wallet_id, user_id, amount, currency,
	COALESCE(provider_invoice_id, '') AS provider_invoice_id,
	COALESCE(payment_url, '') AS payment_url,
	status, created_at, updated_at
`

func (r *Repository) InsertInvoice(ctx context.Context, inv *FundingInvoice) (*FundingInvoice, error) {
	query := `
		INSERT INTO onramp_invoices (id, wallet_id, user_id, amount, currency, provider_invoice_id, payment_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING` + invoiceColumns

	var saved FundingInvoice
	err := r.store.GetContext(ctx, &saved, query,
		inv.ID, inv.WalletID, inv.UserID, inv.Amount, inv.Currency,
		inv.ProviderInvoiceID, inv.PaymentURL, inv.Status)
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func (r *Repository) GetInvoice(ctx context.Context, id uuid.UUID) (*FundingInvoice, error) {
	query := `SELECT` + invoiceColumns + `FROM onramp_invoices WHERE id = $1`

	var inv FundingInvoice
	if err := r.store.GetContext(ctx, &inv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	return &inv, nil
}

func (r *Repository) ListInvoices(ctx context.Context, walletID uuid.UUID) ([]FundingInvoice, error) {
	query := `
		SELECT` + invoiceColumns + `
		FROM onramp_invoices
		WHERE wallet_id = $1
		ORDER BY created_at DESC
	`

	invoices := []FundingInvoice{}
	if err := r.store.SelectContext(ctx, &invoices, query, walletID); err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *Repository) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*FundingInvoice, error) {
	query := `
		UPDATE onramp_invoices
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING` + invoiceColumns

	var inv FundingInvoice
	if err := r.store.GetContext(ctx, &inv, query, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	return &inv, nil
}

// ClaimInvoiceForCredit flips an invoice to credited exactly once. Whichever
// webhook delivery commits first wins; every other delivery sees zero rows.
func (r *Repository) ClaimInvoiceForCredit(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE onramp_invoices
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status <> $2
	`

	result, err := r.store.ExecContext(ctx, query, id, InvoiceCredited)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *Repository) TreasuryAddress(ctx context.Context, walletID uuid.UUID) (string, error) {
	query := `SELECT COALESCE(treasury_address, '') FROM shared_wallets WHERE id = $1`

	var address string
	if err := r.store.GetContext(ctx, &address, query, walletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ledger.ErrWalletNotFound
		}
		return "", err
	}

	return address, nil
}

func (r *Repository) SetTreasuryAddress(ctx context.Context, walletID uuid.UUID, address string) error {
	query := `UPDATE shared_wallets SET treasury_address = $2, updated_at = now() WHERE id = $1`

	result, err := r.store.ExecContext(ctx, query, walletID, address)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrWalletNotFound
	}

	return nil
}

// DepositRecorded reports whether a ledger event already carries this
// signature, so a deposit can never be credited twice.
func (r *Repository) DepositRecorded(ctx context.Context, walletID uuid.UUID, signature string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_events WHERE wallet_id = $1 AND source_transaction_id = $2)`

	var recorded bool
	if err := r.store.GetContext(ctx, &recorded, query, walletID, signature); err != nil {
		return false, err
	}

	return recorded, nil
}
