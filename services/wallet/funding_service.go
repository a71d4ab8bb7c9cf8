package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/WeSplit-io/WeSplit-Backend/providers/onramp"
	"github.com/WeSplit-io/WeSplit-Backend/providers/solana"
	"github.com/WeSplit-io/WeSplit-Backend/services/address"
	"github.com/WeSplit-io/WeSplit-Backend/services/ledger"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
)

const invoiceLifetimeSeconds = 3600

// ChainReader is the slice of the Helius client deposit verification needs.
type ChainReader interface {
	GetTransaction(signature string) (*solana.HeliusTransaction, error)
	Cluster() string
}

// InvoiceCreator is the slice of the on-ramp provider the service needs.
type InvoiceCreator interface {
	CreateInvoice(request *onramp.InvoiceRequest) (*onramp.Invoice, error)
	GetPaymentInfo(request *onramp.PaymentInfoRequest) (*onramp.Invoice, error)
}

// LedgerWriter appends verified contributions to the shared-wallet ledger.
type LedgerWriter interface {
	GetWallet(ctx context.Context, walletID uuid.UUID) (*ledger.SharedWallet, error)
	AppendEvent(ctx context.Context, walletID uuid.UUID, e ledger.LedgerEvent) (*ledger.SharedWallet, error)
}

// FundingService moves money INTO shared wallets: hosted fiat invoices
// through the on-ramp provider and member-submitted on-chain deposits
// verified against the wallet's treasury address. Both paths end as
// ordinary ledger contributions, so balances stay a pure fold over events.
type FundingService struct {
	repo        *Repository
	ledger      LedgerWriter
	chain       ChainReader
	onramp      InvoiceCreator
	callbackURL string
	logger      *logging.Logger
}

func NewFundingService(repo *Repository, ledgerSvc LedgerWriter, chain ChainReader, onrampProvider InvoiceCreator, callbackURL string, logger *logging.Logger) *FundingService {
	return &FundingService{
		repo:        repo,
		ledger:      ledgerSvc,
		chain:       chain,
		onramp:      onrampProvider,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// CreateInvoice opens a hosted payment page so a member can fund the wallet
// from fiat. The invoice settles into the wallet currency; the contribution
// is recorded only when the provider confirms payment.
func (s *FundingService) CreateInvoice(ctx context.Context, walletID uuid.UUID, userID int64, amount decimal.Decimal, fiatCurrency string) (*FundingInvoice, error) {
	if s.onramp == nil {
		return nil, fmt.Errorf("on-ramp funding is not configured")
	}
	if !amount.IsPositive() {
		return nil, ErrBadAmount
	}

	w, err := s.ledger.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !isMember(w, userID) {
		return nil, ledger.ErrUnknownMember
	}

	id := uuid.New()
	created, err := s.onramp.CreateInvoice(&onramp.InvoiceRequest{
		Amount:      amount.StringFixed(2),
		Currency:    fiatCurrency,
		OrderID:     id.String(),
		ToCurrency:  w.Currency,
		URLCallback: s.callbackURL,
		Lifetime:    invoiceLifetimeSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("creating on-ramp invoice: %w", err)
	}

	inv := &FundingInvoice{
		ID:                id,
		WalletID:          walletID,
		UserID:            userID,
		Amount:            amount,
		Currency:          fiatCurrency,
		ProviderInvoiceID: created.UUID,
		PaymentURL:        created.URL,
		Status:            InvoicePending,
	}

	saved, err := s.repo.InsertInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("funding invoice %s opened for wallet %s by user %d (%s %s)", id, walletID, userID, amount.StringFixed(2), fiatCurrency))
	return saved, nil
}

// SettleInvoice is driven by the provider webhook. The callback body is
// only a doorbell: the current status is re-fetched from the provider
// before any money moves, and the credited flip is claimed atomically so
// duplicate deliveries cannot double-credit.
func (s *FundingService) SettleInvoice(ctx context.Context, orderID string) (*FundingInvoice, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}

	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoiceCredited {
		return inv, nil
	}

	info, err := s.onramp.GetPaymentInfo(&onramp.PaymentInfoRequest{OrderID: orderID})
	if err != nil {
		return nil, fmt.Errorf("fetching payment info: %w", err)
	}

	if !onramp.Settled(info.Status) {
		if onramp.Final(info.Status) {
			return s.repo.UpdateInvoiceStatus(ctx, id, InvoiceFailed)
		}
		return inv, nil
	}

	claimed, err := s.repo.ClaimInvoiceForCredit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return s.repo.GetInvoice(ctx, id)
	}

	event := ledger.LedgerEvent{
		WalletID:            inv.WalletID,
		MemberID:            inv.UserID,
		Kind:                ledger.KindContribution,
		Amount:              creditedAmount(inv, info),
		Timestamp:           time.Now().UTC(),
		SourceTransactionID: "onramp:" + inv.ID.String(),
	}

	if _, err := s.ledger.AppendEvent(ctx, inv.WalletID, event); err != nil {
		// Roll the claim back so a retry can credit once the ledger accepts.
		if _, statusErr := s.repo.UpdateInvoiceStatus(ctx, id, InvoicePaid); statusErr != nil {
			s.logger.Error(fmt.Sprintf("invoice %s stuck after failed credit: %v", id, statusErr))
		}
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("funding invoice %s credited to wallet %s", id, inv.WalletID))
	return s.repo.GetInvoice(ctx, id)
}

// VerifyDeposit credits a member-submitted on-chain transfer. The signature
// is looked up on chain and must pay the wallet's treasury address in the
// wallet currency; anything else is refused without touching the ledger.
func (s *FundingService) VerifyDeposit(ctx context.Context, walletID uuid.UUID, memberID int64, signature string) (*Deposit, error) {
	if s.chain == nil {
		return nil, fmt.Errorf("on-chain verification is not configured")
	}
	if signature == "" {
		return nil, ErrDepositNotFound
	}

	treasury, err := s.repo.TreasuryAddress(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if treasury == "" {
		return nil, ErrNoTreasuryAddress
	}

	recorded, err := s.repo.DepositRecorded(ctx, walletID, signature)
	if err != nil {
		return nil, err
	}
	if recorded {
		return nil, ErrDepositAlreadyCredited
	}

	tx, err := s.chain.GetTransaction(signature)
	if err != nil {
		if errors.Is(err, solana.ErrTransactionNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	if tx.Failed() {
		return nil, ErrDepositFailed
	}

	transfer, ok := tx.TransferTo(treasury)
	if !ok {
		return nil, ErrDepositMismatch
	}

	currency, ok := solana.CurrencyForMint(s.chain.Cluster(), transfer.Mint)
	if !ok {
		return nil, ErrUnsupportedAsset
	}

	w, err := s.ledger.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !isMember(w, memberID) {
		return nil, ledger.ErrUnknownMember
	}
	if currency != w.Currency {
		return nil, fmt.Errorf("%w: got %s, wallet holds %s", ErrCurrencyMismatch, currency, w.Currency)
	}

	event := ledger.LedgerEvent{
		WalletID: walletID,
		MemberID: memberID,
		Kind:     ledger.KindContribution,
		Amount:   transfer.Amount,
		// Stamped at credit time, not block time: the ledger orders events
		// by when they entered it, and a late verification must still land
		// after everything already applied.
		Timestamp:           time.Now().UTC(),
		SourceTransactionID: signature,
	}

	if _, err := s.ledger.AppendEvent(ctx, walletID, event); err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("on-chain deposit %s credited to wallet %s: %s %s from %s", signature, walletID, transfer.Amount, currency, transfer.From))

	return &Deposit{
		WalletID:  walletID,
		MemberID:  memberID,
		Signature: signature,
		From:      transfer.From,
		Amount:    transfer.Amount,
		Currency:  currency,
		Slot:      transfer.Slot,
		Timestamp: transfer.Timestamp,
	}, nil
}

// SetTreasuryAddress pins the on-chain address deposits are verified
// against. Creator-only, and the address must be strictly valid; an
// unverifiable address would silently blackhole every deposit check.
func (s *FundingService) SetTreasuryAddress(ctx context.Context, walletID uuid.UUID, byUserID int64, addr string) error {
	w, err := s.ledger.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	if w.CreatorID != byUserID {
		return ledger.ErrNotCreator
	}
	if !address.IsValid(addr) {
		return ErrBadTreasuryAddress
	}

	return s.repo.SetTreasuryAddress(ctx, walletID, addr)
}

// Invoices lists a wallet's funding invoices, newest first.
func (s *FundingService) Invoices(ctx context.Context, walletID uuid.UUID, userID int64) ([]FundingInvoice, error) {
	w, err := s.ledger.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !isMember(w, userID) {
		return nil, ledger.ErrUnknownMember
	}

	return s.repo.ListInvoices(ctx, walletID)
}

func isMember(w *ledger.SharedWallet, userID int64) bool {
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// creditedAmount prefers the provider's settled amount over the requested
// one; a payer who over- or under-pays is credited with what arrived.
func creditedAmount(inv *FundingInvoice, info *onramp.Invoice) decimal.Decimal {
	if info.PaymentAmount != "" {
		if settled, err := decimal.NewFromString(info.PaymentAmount); err == nil && settled.IsPositive() {
			return settled
		}
	}
	return inv.Amount
}
