package contact

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeSplit-io/WeSplit-Backend/db"
)

func setupContactMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	repo := NewRepository(db.NewStore(sqlxDB))

	return repo, mock, func() { sqlxDB.Close() }
}

func contactRows(t *testing.T, contacts ...Contact) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "wallet_address", "email", "favorite", "created_at", "updated_at"})
	now := time.Now().UTC()
	for _, c := range contacts {
		rows.AddRow(c.ID, c.OwnerID, c.Name, c.WalletAddress, c.Email, c.Favorite, now, now)
	}
	return rows
}

func TestRepositoryInsertReturnsSavedRow(t *testing.T) {
	repo, mock, closer := setupContactMock(t)
	defer closer()

	mock.ExpectQuery("INSERT INTO contacts").
		WithArgs(int64(1), "Ann", usableAddress, "", false).
		WillReturnRows(contactRows(t, Contact{ID: 10, OwnerID: 1, Name: "Ann", WalletAddress: usableAddress}))

	saved, err := repo.Insert(context.Background(), &Contact{OwnerID: 1, Name: "Ann", WalletAddress: usableAddress})
	require.NoError(t, err)
	assert.Equal(t, int64(10), saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertMapsDuplicate(t *testing.T) {
	repo, mock, closer := setupContactMock(t)
	defer closer()

	mock.ExpectQuery("INSERT INTO contacts").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Insert(context.Background(), &Contact{OwnerID: 1, Name: "Ann", WalletAddress: usableAddress})
	assert.ErrorIs(t, err, ErrContactExists)
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock, closer := setupContactMock(t)
	defer closer()

	mock.ExpectQuery("FROM contacts").
		WithArgs(int64(99), int64(1)).
		WillReturnRows(contactRows(t))

	_, err := repo.GetByID(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestRepositoryListOrdersFavoritesFirst(t *testing.T) {
	repo, mock, closer := setupContactMock(t)
	defer closer()

	mock.ExpectQuery("ORDER BY favorite DESC, name ASC").
		WithArgs(int64(1)).
		WillReturnRows(contactRows(t,
			Contact{ID: 2, OwnerID: 1, Name: "Ben", Favorite: true},
			Contact{ID: 1, OwnerID: 1, Name: "Ann"},
		))

	contacts, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.True(t, contacts[0].Favorite)
}

func TestRepositorySetFavoriteMissingRow(t *testing.T) {
	repo, mock, closer := setupContactMock(t)
	defer closer()

	mock.ExpectQuery("UPDATE contacts").
		WithArgs(int64(10), int64(1), true).
		WillReturnRows(contactRows(t))

	_, err := repo.SetFavorite(context.Background(), 1, 10, true)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestRepositoryDeleteReportsMissingRow(t *testing.T) {
	repo, mock, closer := setupContactMock(t)
	defer closer()

	mock.ExpectExec("DELETE FROM contacts").
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrContactNotFound)
}
