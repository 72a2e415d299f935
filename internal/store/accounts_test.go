package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewAccountStore(db)

	t.Run("creates account", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs("seller42", "hash", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		id, err := s.Create(context.Background(), "seller42", "hash", nil)
		assert.NoError(t, err)
		assert.Equal(t, 1, id)
	})

	t.Run("duplicate username", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs("seller42", "hash", nil).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := s.Create(context.Background(), "seller42", "hash", nil)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestAccountStore_UpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewAccountStore(db)

	t.Run("updates existing account", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET password_hash = \\$1 WHERE username = \\$2").
			WithArgs("newhash", "seller42").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdatePassword(context.Background(), "seller42", "newhash"))
	})

	t.Run("missing account", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET password_hash = \\$1 WHERE username = \\$2").
			WithArgs("newhash", "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.UpdatePassword(context.Background(), "ghost", "newhash"), ErrNotFound)
	})
}

func TestAccountStore_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewAccountStore(db)

	t.Run("case-sensitive exact match only", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, username, password_hash, payout_account_id, created_at FROM accounts WHERE username = \\$1").
			WithArgs("Seller42").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "payout_account_id", "created_at"}))

		_, err := s.GetByUsername(context.Background(), "Seller42")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns payout account when set", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, username, password_hash, payout_account_id, created_at FROM accounts WHERE username = \\$1").
			WithArgs("seller42").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "payout_account_id", "created_at"}).
				AddRow(1, "seller42", "x$y", "acct_X", time.Now()))

		account, err := s.GetByUsername(context.Background(), "seller42")
		require.NoError(t, err)
		assert.True(t, account.Payable())
		assert.Equal(t, "acct_X", *account.PayoutAccountID)
	})
}
