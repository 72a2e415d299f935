package models

import "time"

// Account represents a marketplace user
type Account struct {
	ID              int       `json:"id" example:"1"`                                    // Account ID
	Username        string    `json:"username" example:"seller42"`                       // Unique username (case-sensitive)
	PasswordHash    string    `json:"-"`                                                 // Argon2id hash, never serialized
	PayoutAccountID *string   `json:"payoutAccountId,omitempty" example:"acct_1N9zXYZ"` // Processor sub-account for fee-split payouts
	CreatedAt       time.Time `json:"createdAt"`
}

// Payable reports whether the account can receive split payouts.
func (a *Account) Payable() bool {
	return a.PayoutAccountID != nil && *a.PayoutAccountID != ""
}
