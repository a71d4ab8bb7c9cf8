package transaction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/redis"
)

const DefaultHistoryLimit = 50

// HistoryStore is the slice of the repository the service reads through.
type HistoryStore interface {
	History(ctx context.Context, userID int64, limit int) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
}

type TransactionService struct {
	repo       HistoryStore
	classifier *Classifier
	cache      *redis.RedisService
	logger     *logging.Logger
}

// NewTransactionService wires the history reader. cache may be nil, in which
// case every read goes to the store.
func NewTransactionService(repo HistoryStore, classifier *Classifier, cache *redis.RedisService, logger *logging.Logger) *TransactionService {
	if classifier == nil {
		classifier = NewClassifier(PolicyColored)
	}
	return &TransactionService{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		logger:     logger,
	}
}

// GetHistory returns the user's transaction history in display-normalized
// form. Raw records are cached; classification always reruns so a policy
// change can never serve stale display data.
func (s *TransactionService) GetHistory(ctx context.Context, userID int64, limit int) ([]Classified, error) {
	if limit <= 0 || limit > 200 {
		limit = DefaultHistoryLimit
	}

	if records, ok := s.cachedHistory(ctx, userID, limit); ok {
		return s.classifier.ClassifyAll(records), nil
	}

	records, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		s.logger.Error(fmt.Sprintf("history read failed for user %d: %v", userID, err))
		return nil, ErrHistoryUnavailable
	}

	s.cacheHistory(ctx, userID, limit, records)
	return s.classifier.ClassifyAll(records), nil
}

// RecordTransaction persists one raw record and drops the owner's cached
// history.
func (s *TransactionService) RecordTransaction(ctx context.Context, rec Record) error {
	if err := s.repo.Insert(ctx, rec); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTransactionHistory(ctx, rec.UserID); err != nil {
			s.logger.Warn(fmt.Sprintf("could not invalidate history cache for user %d: %v", rec.UserID, err))
		}
	}

	return nil
}

// cachedPage remembers the limit the page was fetched with so a cached read
// can serve any request for the same or a smaller window.
type cachedPage struct {
	Limit   int      `json:"limit"`
	Records []Record `json:"records"`
}

func (s *TransactionService) cachedHistory(ctx context.Context, userID int64, limit int) ([]Record, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.GetTransactionHistory(ctx, userID)
	if err != nil {
		if err != redis.ErrCacheMiss {
			s.logger.Warn(fmt.Sprintf("history cache read failed for user %d: %v", userID, err))
		}
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		s.logger.Warn(fmt.Sprintf("dropping unreadable history cache entry for user %d: %v", userID, err))
		return nil, false
	}

	if page.Limit < limit {
		return nil, false
	}

	records := page.Records
	if len(records) > limit {
		records = records[:limit]
	}

	return records, true
}

func (s *TransactionService) cacheHistory(ctx context.Context, userID int64, limit int, records []Record) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(cachedPage{Limit: limit, Records: records})
	if err != nil {
		return
	}
	if err := s.cache.CacheTransactionHistory(ctx, userID, payload); err != nil {
		s.logger.Warn(fmt.Sprintf("could not cache history for user %d: %v", userID, err))
	}
}
