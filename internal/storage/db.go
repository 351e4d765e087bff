package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/models"

	"golang.org/x/sync/errgroup"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by
	// the requesting account.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one pooled connection also keeps
	// in-memory databases coherent across the pool.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.Migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateAccount inserts a new account and returns it. A duplicate username
// yields ErrUsernameTaken and leaves no partial state behind.
func (db *DB) CreateAccount(username, passwordHash, fullname string) (*models.Account, error) {
	result, err := db.conn.Exec(
		"INSERT INTO accounts (username, password_hash, fullname, created_at) VALUES (?, ?, ?, ?)",
		username, passwordHash, fullname, time.Now(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetAccountByID(id)
}

// GetAccountByID retrieves an account by ID.
func (db *DB) GetAccountByID(id int64) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash, fullname, created_at FROM accounts WHERE id = ?",
		id,
	)
	return scanAccount(row)
}

// GetAccountByUsername retrieves an account by username.
func (db *DB) GetAccountByUsername(username string) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash, fullname, created_at FROM accounts WHERE username = ?",
		username,
	)
	return scanAccount(row)
}

// AccountCount returns the number of registered accounts.
func (db *DB) AccountCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Fullname, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateTransaction inserts a new transaction owned by accountID. The date
// is the user-supplied calendar date in YYYY-MM-DD form.
func (db *DB) CreateTransaction(accountID int64, txType string, amount float64, category, description, date string) error {
	_, err := db.conn.Exec(
		`INSERT INTO transactions (account_id, type, amount, category, description, transaction_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		accountID, txType, amount, category, description, date, time.Now(),
	)
	return err
}

// GetTransaction retrieves a single transaction scoped by (id, accountID).
// A transaction that exists but belongs to another account is ErrNotFound.
func (db *DB) GetTransaction(id, accountID int64) (*models.Transaction, error) {
	row := db.conn.QueryRow(
		`SELECT id, account_id, type, amount, category, description, transaction_date, created_at
		 FROM transactions WHERE id = ? AND account_id = ?`,
		id, accountID,
	)

	var t models.Transaction
	if err := row.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// UpdateTransaction overwrites the mutable fields of a transaction scoped by
// (id, accountID). Matching zero rows is not an error.
func (db *DB) UpdateTransaction(accountID int64, t *models.Transaction) error {
	_, err := db.conn.Exec(
		`UPDATE transactions SET type = ?, amount = ?, category = ?, description = ?, transaction_date = ?
		 WHERE id = ? AND account_id = ?`,
		t.Type, t.Amount, t.Category, t.Description, t.Date, t.ID, accountID,
	)
	return err
}

// DeleteTransaction deletes a transaction scoped by (id, accountID).
// Deleting a nonexistent or non-owned id is a no-op.
func (db *DB) DeleteTransaction(id, accountID int64) error {
	_, err := db.conn.Exec(
		"DELETE FROM transactions WHERE id = ? AND account_id = ?",
		id, accountID,
	)
	return err
}

// ListTransactions returns the account's transactions ordered by transaction
// date descending, then creation time descending. typeFilter narrows the
// result to "income" or "expense"; "all" (or empty) bypasses filtering.
func (db *DB) ListTransactions(accountID int64, typeFilter string) ([]models.Transaction, error) {
	query := `SELECT id, account_id, type, amount, category, description, transaction_date, created_at
		 FROM transactions WHERE account_id = ?`
	args := []any{accountID}

	if typeFilter != "" && typeFilter != "all" {
		query += " AND type = ?"
		args = append(args, typeFilter)
	}
	query += " ORDER BY transaction_date DESC, created_at DESC, id DESC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

// Summary holds the aggregated figures for an account's dashboard.
type Summary struct {
	Income     float64
	Expense    float64
	Balance    float64
	Recent     []models.Transaction
	TotalCount int
}

// recentLimit is how many transactions the dashboard shows.
const recentLimit = 5

// Summarize computes the dashboard figures for an account. The four queries
// are issued concurrently and independently; they do not share a snapshot,
// so concurrent writes from the same account may produce a torn summary.
func (db *DB) Summarize(accountID int64) (*Summary, error) {
	var s Summary

	g := new(errgroup.Group)
	g.Go(func() error {
		return db.conn.QueryRow(
			"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = ? AND type = ?",
			accountID, models.TypeIncome,
		).Scan(&s.Income)
	})
	g.Go(func() error {
		return db.conn.QueryRow(
			"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = ? AND type = ?",
			accountID, models.TypeExpense,
		).Scan(&s.Expense)
	})
	g.Go(func() error {
		return db.conn.QueryRow(
			"SELECT COUNT(*) FROM transactions WHERE account_id = ?",
			accountID,
		).Scan(&s.TotalCount)
	})
	g.Go(func() error {
		rows, err := db.conn.Query(
			`SELECT id, account_id, type, amount, category, description, transaction_date, created_at
			 FROM transactions WHERE account_id = ?
			 ORDER BY transaction_date DESC, created_at DESC, id DESC LIMIT ?`,
			accountID, recentLimit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Transaction
			if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
				return err
			}
			s.Recent = append(s.Recent, t)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Balance = s.Income - s.Expense
	return &s, nil
}

// CreateSession creates a new session for an account.
func (db *DB) CreateSession(token string, accountID int64, expiresAt time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, account_id, expires_at) VALUES (?, ?, ?)",
		token, accountID, expiresAt,
	)
	return err
}

// ValidateSession checks a session token and returns the associated account.
func (db *DB) ValidateSession(token string) (*models.Account, error) {
	row := db.conn.QueryRow(`
		SELECT a.id, a.username, a.password_hash, a.fullname, a.created_at
		FROM sessions s
		JOIN accounts a ON s.account_id = a.id
		WHERE s.token = ? AND s.expires_at > ?
	`, token, time.Now())
	return scanAccount(row)
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	return err
}
