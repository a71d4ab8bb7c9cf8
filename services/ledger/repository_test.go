package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedgerMock(t *testing.T) (*Repository, *db.Store, sqlmock.Sqlmock, func()) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	store := db.NewStore(sqlxDB)
	repo := NewRepository(store)

	return repo, store, mock, func() { sqlxDB.Close() }
}

func TestGetWalletMetaNotFound(t *testing.T) {
	repo, store, mock, closer := setupLedgerMock(t)
	defer closer()

	mock.ExpectQuery("FROM shared_wallets").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "creator_id", "currency", "status", "created_at", "updated_at"}))

	_, err := repo.GetWalletMeta(context.Background(), store, walletID, false)
	assert.ErrorIs(t, err, ErrWalletNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWalletMetaLoadsMembers(t *testing.T) {
	repo, store, mock, closer := setupLedgerMock(t)
	defer closer()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM shared_wallets").
		WithArgs(walletID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "creator_id", "currency", "status", "created_at", "updated_at"}).
			AddRow(walletID.String(), "Trip Fund", int64(1), "USDC", "active", now, now))
	mock.ExpectQuery("FROM wallet_members").
		WithArgs(walletID).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_id", "user_id", "joined_at"}).
			AddRow(walletID.String(), int64(1), now).
			AddRow(walletID.String(), int64(2), now))

	meta, err := repo.GetWalletMeta(context.Background(), store, walletID, false)
	require.NoError(t, err)

	assert.Equal(t, "Trip Fund", meta.Name)
	assert.Equal(t, int64(1), meta.CreatorID)
	assert.Equal(t, StatusActive, meta.Status)
	require.Len(t, meta.Members, 2)
	assert.True(t, meta.Members[0].Balance().IsZero(), "meta carries zeroed balances")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsMapsRows(t *testing.T) {
	repo, store, mock, closer := setupLedgerMock(t)
	defer closer()

	occurred := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM ledger_events").
		WithArgs(walletID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "wallet_id", "member_id", "kind", "amount",
			"occurred_at", "source_transaction_id", "metadata", "created_at",
		}).
			AddRow(int64(1), walletID.String(), int64(2), "contribution", "100", occurred, "tx-1", nil, occurred).
			AddRow(int64(2), walletID.String(), int64(2), "withdrawal", "30", occurred.Add(time.Minute), "tx-2", nil, occurred))

	events, err := repo.ListEvents(context.Background(), store, walletID)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, KindContribution, events[0].Kind)
	assert.Equal(t, "tx-1", events[0].SourceTransactionID)
	assert.True(t, events[0].Amount.String() == "100")
	assert.Equal(t, KindWithdrawal, events[1].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEventDuplicate(t *testing.T) {
	repo, store, mock, closer := setupLedgerMock(t)
	defer closer()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_events").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := store.ExecTx(context.Background(), func(tx *sqlx.Tx) error {
		return repo.InsertEvent(context.Background(), tx, event(2, KindContribution, "10", 0, "tx-1"), nil)
	})

	assert.ErrorIs(t, err, ErrDuplicateEvent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListWalletsForUser(t *testing.T) {
	repo, _, mock, closer := setupLedgerMock(t)
	defer closer()

	mock.ExpectQuery("FROM shared_wallets w").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "currency", "status", "member_count", "total_balance"}).
			AddRow(walletID.String(), "Trip Fund", "USDC", "active", 3, "145.5"))

	summaries, err := repo.ListWalletsForUser(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "Trip Fund", summaries[0].Name)
	assert.Equal(t, 3, summaries[0].MemberCount)
	assert.Equal(t, "145.5", summaries[0].TotalBalance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
