package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/WeSplit-io/WeSplit-Backend/services/currency"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
	"github.com/WeSplit-io/WeSplit-Backend/services/redis"
	"github.com/WeSplit-io/WeSplit-Backend/services/transaction"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Broadcaster pushes wallet updates to connected members.
type Broadcaster interface {
	BroadcastToWallet(walletID string, payload []byte)
}

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, notifType, title, body string, data map[string]any) error
}

// TransactionRecorder mirrors applied events into the per-user history.
type TransactionRecorder interface {
	RecordTransaction(ctx context.Context, rec transaction.Record) error
}

type Service struct {
	store    *db.Store
	repo     *Repository
	cache    *redis.RedisService
	hub      Broadcaster
	notifier Notifier
	recorder TransactionRecorder
	logger   *logging.Logger
}

// NewService wires the ledger. cache, hub, notifier and recorder may each be
// nil; the corresponding side effect is skipped.
func NewService(store *db.Store, cache *redis.RedisService, hub Broadcaster, notifier Notifier, recorder TransactionRecorder, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		repo:     NewRepository(store),
		cache:    cache,
		hub:      hub,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Service) CreateWallet(ctx context.Context, name string, creatorID int64, curr string, memberIDs []int64) (*SharedWallet, error) {
	if curr == "" {
		curr = currency.DefaultCurrency
	}
	if currency.IsCurrencyInvalid(curr) {
		return nil, currency.NewCurrencyError(currency.ErrUnsupportedCurrency, curr)
	}

	wallet := NewSharedWallet(uuid.New(), name, creatorID, curr, memberIDs)

	err := s.store.ExecTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.InsertWallet(ctx, tx, wallet)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("created shared wallet %v (%v) for user %d", wallet.ID, name, creatorID))
	return wallet, nil
}

// GetWallet rebuilds the snapshot from the event log, preferring the cached
// copy when one survives.
func (s *Service) GetWallet(ctx context.Context, walletID uuid.UUID) (*SharedWallet, error) {
	if snapshot, ok := s.cachedSnapshot(ctx, walletID); ok {
		return snapshot, nil
	}

	meta, err := s.repo.GetWalletMeta(ctx, s.store, walletID, false)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.ListEvents(ctx, s.store, walletID)
	if err != nil {
		return nil, err
	}

	snapshot, err := Replay(meta, events)
	if err != nil {
		// A log that does not replay cleanly means corrupt storage, not a
		// caller mistake
		s.logger.Error(fmt.Sprintf("wallet %v event log does not replay: %v", walletID, err))
		return nil, err
	}

	s.cacheSnapshot(ctx, snapshot)
	return snapshot, nil
}

func (s *Service) ListWallets(ctx context.Context, userID int64) ([]WalletSummary, error) {
	return s.repo.ListWalletsForUser(ctx, userID)
}

// AppendEvent validates one contribution or withdrawal against the current
// snapshot and persists it. The fold's refusal always precedes the write:
// a rejected event reaches neither the log nor any member's balance.
func (s *Service) AppendEvent(ctx context.Context, walletID uuid.UUID, e LedgerEvent) (*SharedWallet, error) {
	if e.WalletID == uuid.Nil {
		e.WalletID = walletID
	}

	var next *SharedWallet
	err := s.store.ExecTx(ctx, func(tx *sqlx.Tx) error {
		meta, err := s.repo.GetWalletMeta(ctx, tx, walletID, true)
		if err != nil {
			return err
		}

		events, err := s.repo.ListEvents(ctx, tx, walletID)
		if err != nil {
			return err
		}

		snapshot, err := Replay(meta, events)
		if err != nil {
			return err
		}

		next, err = ApplyEvent(snapshot, e)
		if err != nil {
			return err
		}

		return s.repo.InsertEvent(ctx, tx, e, nil)
	})
	if err != nil {
		metrics.RecordLedgerRejection(rejectionReason(err))
		return nil, err
	}

	metrics.RecordLedgerEvent(string(e.Kind))
	s.afterApply(ctx, next, e)
	return next, nil
}

// Balances maps each member to their derived balance.
func (s *Service) Balances(ctx context.Context, walletID uuid.UUID) (map[int64]string, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	balances := make(map[int64]string, len(wallet.Members))
	for _, m := range wallet.Members {
		balances[m.UserID] = m.Balance().String()
	}
	return balances, nil
}

func (s *Service) CloseWallet(ctx context.Context, walletID uuid.UUID, byUserID int64) (*SharedWallet, error) {
	var closed *SharedWallet
	err := s.store.ExecTx(ctx, func(tx *sqlx.Tx) error {
		meta, err := s.repo.GetWalletMeta(ctx, tx, walletID, true)
		if err != nil {
			return err
		}

		closed, err = Close(meta, byUserID)
		if err != nil {
			return err
		}

		return s.repo.UpdateWalletStatus(ctx, tx, walletID, StatusClosed)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx, walletID)
	return closed, nil
}

func (s *Service) AddWalletMember(ctx context.Context, walletID uuid.UUID, userID int64) error {
	err := s.store.ExecTx(ctx, func(tx *sqlx.Tx) error {
		meta, err := s.repo.GetWalletMeta(ctx, tx, walletID, true)
		if err != nil {
			return err
		}

		if _, err := AddMember(meta, userID); err != nil {
			return err
		}

		return s.repo.InsertMember(ctx, tx, walletID, userID)
	})
	if err != nil {
		return err
	}

	s.invalidateSnapshot(ctx, walletID)
	return nil
}

// afterApply runs the post-commit side effects: cache invalidation, history
// mirroring, realtime broadcast and member notifications. Failures here are
// logged, never surfaced — the event is already durable.
func (s *Service) afterApply(ctx context.Context, w *SharedWallet, e LedgerEvent) {
	s.cacheSnapshot(ctx, w)

	if s.recorder != nil {
		rec := transaction.Record{
			ID:        fmt.Sprintf("%s:%s", w.ID, e.SourceTransactionID),
			UserID:    e.MemberID,
			Type:      mirrorType(e.Kind),
			Amount:    e.Amount,
			Currency:  w.Currency,
			Status:    "completed",
			Memo:      w.Name,
			CreatedAt: e.Timestamp,
		}
		if err := s.recorder.RecordTransaction(ctx, rec); err != nil && !errors.Is(err, transaction.ErrRecordExists) {
			s.logger.Warn(fmt.Sprintf("could not mirror event %v into history: %v", rec.ID, err))
		}
	}

	if s.hub != nil {
		payload, err := json.Marshal(map[string]any{
			"type":          "wallet_event",
			"wallet_id":     w.ID,
			"kind":          e.Kind,
			"member_id":     e.MemberID,
			"amount":        e.Amount,
			"currency":      w.Currency,
			"total_balance": w.TotalBalance,
		})
		if err == nil {
			s.hub.BroadcastToWallet(w.ID.String(), payload)
		}
	}

	if s.notifier != nil {
		verb := "added"
		if e.Kind == KindWithdrawal {
			verb = "withdrew"
		}
		title := w.Name
		body := fmt.Sprintf("A member %s %s %s", verb, e.Amount.String(), w.Currency)
		data := map[string]any{
			"wallet_id": w.ID.String(),
			"kind":      string(e.Kind),
			"amount":    e.Amount.String(),
		}

		for _, m := range w.Members {
			if m.UserID == e.MemberID {
				continue
			}
			if err := s.notifier.Notify(ctx, m.UserID, "wallet_event", title, body, data); err != nil {
				s.logger.Warn(fmt.Sprintf("could not notify member %d: %v", m.UserID, err))
			}
		}
	}
}

func (s *Service) cachedSnapshot(ctx context.Context, walletID uuid.UUID) (*SharedWallet, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.GetWalletSnapshot(ctx, walletID.String())
	if err != nil {
		if err != redis.ErrCacheMiss {
			s.logger.Warn(fmt.Sprintf("snapshot cache read failed for wallet %v: %v", walletID, err))
		}
		return nil, false
	}

	var snapshot SharedWallet
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false
	}
	return &snapshot, true
}

func (s *Service) cacheSnapshot(ctx context.Context, w *SharedWallet) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(w)
	if err != nil {
		return
	}
	if err := s.cache.CacheWalletSnapshot(ctx, w.ID.String(), payload); err != nil {
		s.logger.Warn(fmt.Sprintf("could not cache snapshot for wallet %v: %v", w.ID, err))
	}
}

func (s *Service) invalidateSnapshot(ctx context.Context, walletID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWalletSnapshot(ctx, walletID.String()); err != nil {
		s.logger.Warn(fmt.Sprintf("could not invalidate snapshot for wallet %v: %v", walletID, err))
	}
}

func mirrorType(kind EventKind) string {
	if kind == KindWithdrawal {
		return "withdrawal"
	}
	return "funding"
}

// rejectionReason labels refusals for the metrics counter.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrOutOfOrder):
		return "out_of_order"
	case errors.Is(err, ErrDuplicateEvent):
		return "duplicate"
	case errors.Is(err, ErrUnknownMember):
		return "unknown_member"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, ErrNonPositiveAmount), errors.Is(err, ErrMissingSource):
		return "malformed"
	case errors.Is(err, ErrWalletClosed):
		return "closed"
	case errors.Is(err, ErrWalletNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
