package models

import "time"

// Transaction types. The type column is free text in the store; these are
// the only values the application writes.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Account represents a registered user.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Fullname     string    `json:"fullname"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction represents a single dated income or expense record owned by
// exactly one account. Date is the user-supplied calendar date in
// YYYY-MM-DD form; CreatedAt is assigned by the store.
type Transaction struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"transaction_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session represents a server-side login session.
type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
