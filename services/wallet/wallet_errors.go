package wallet

import "errors"

var (
	ErrInvoiceNotFound        = errors.New("funding invoice not found")
	ErrBadAmount              = errors.New("funding amount must be positive")
	ErrNoTreasuryAddress      = errors.New("wallet has no treasury address")
	ErrBadTreasuryAddress     = errors.New("treasury address is not a valid address")
	ErrDepositNotFound        = errors.New("transaction not found on chain")
	ErrDepositFailed          = errors.New("transaction failed on chain")
	ErrDepositMismatch        = errors.New("transaction does not pay this wallet")
	ErrUnsupportedAsset       = errors.New("transaction pays an unsupported token")
	ErrCurrencyMismatch       = errors.New("deposit currency does not match the wallet")
	ErrDepositAlreadyCredited = errors.New("deposit was already credited")
)
