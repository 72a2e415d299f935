package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rcmp123/backend/internal/models"
)

// AccountStore holds user identity and credential hashes.
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create inserts a new account and returns its ID. A duplicate username
// surfaces as ErrUsernameTaken.
func (s *AccountStore) Create(ctx context.Context, username, passwordHash string, payoutAccountID *string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO accounts (username, password_hash, payout_account_id, created_at)
		 VALUES ($1, $2, $3, NOW()) RETURNING id`,
		username, passwordHash, payoutAccountID).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

// GetByUsername looks up an account by its exact username.
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, payout_account_id, created_at
		 FROM accounts WHERE username = $1`,
		username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.PayoutAccountID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &a, nil
}

// GetByID looks up an account by primary key.
func (s *AccountStore) GetByID(ctx context.Context, id int) (*models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, payout_account_id, created_at
		 FROM accounts WHERE id = $1`,
		id).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.PayoutAccountID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &a, nil
}

// UpdatePassword replaces the credential hash for a username. This is the only
// credential mutation in the system outside registration.
func (s *AccountStore) UpdatePassword(ctx context.Context, username, newHash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = $1 WHERE username = $2`,
		newHash, username)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
