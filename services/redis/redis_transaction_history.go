package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// / Short-lived caches for the hot read paths: a user's transaction history
// / and a shared wallet's balance snapshot. Payloads are opaque JSON owned
// / by the calling service; the ledger invalidates on every applied event.

var ErrCacheMiss = fmt.Errorf("cache miss")

const (
	TransactionHistoryTTL = 2 * time.Minute
	WalletSnapshotTTL     = 5 * time.Minute
)

func transactionHistoryKey(userID int64) string {
	return fmt.Sprintf("tx_history:%d", userID)
}

func walletSnapshotKey(walletID string) string {
	return fmt.Sprintf("wallet_snapshot:%s", walletID)
}

func (r *RedisService) CacheTransactionHistory(ctx context.Context, userID int64, payload []byte) error {
	return r.client.Set(ctx, transactionHistoryKey(userID), payload, TransactionHistoryTTL).Err()
}

func (r *RedisService) GetTransactionHistory(ctx context.Context, userID int64) ([]byte, error) {
	raw, err := r.client.Get(ctx, transactionHistoryKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *RedisService) InvalidateTransactionHistory(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, transactionHistoryKey(userID)).Err()
}

func (r *RedisService) CacheWalletSnapshot(ctx context.Context, walletID string, payload []byte) error {
	return r.client.Set(ctx, walletSnapshotKey(walletID), payload, WalletSnapshotTTL).Err()
}

func (r *RedisService) GetWalletSnapshot(ctx context.Context, walletID string) ([]byte, error) {
	raw, err := r.client.Get(ctx, walletSnapshotKey(walletID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *RedisService) InvalidateWalletSnapshot(ctx context.Context, walletID string) error {
	return r.client.Del(ctx, walletSnapshotKey(walletID)).Err()
}
