package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/models"
	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/storage"
)

// FormViewModel is the data passed to the add/edit form template.
type FormViewModel struct {
	Transaction *models.Transaction
	IsEdit      bool
	Error       string
	Today       string
}

// ListViewModel is the data passed to the list view template.
type ListViewModel struct {
	Transactions []models.Transaction
	FilterType   string
}

// transactionForm holds the validated fields of a submitted transaction.
type transactionForm struct {
	Type        string
	Amount      float64
	Category    string
	Description string
	Date        string
}

// parseTransactionForm validates a submitted transaction. The returned error
// is a user-facing validation message, not an internal fault.
func parseTransactionForm(r *http.Request) (*transactionForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.New("invalid form submission")
	}

	f := &transactionForm{
		Type:        r.FormValue("type"),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Date:        strings.TrimSpace(r.FormValue("transaction_date")),
	}

	if f.Type != models.TypeIncome && f.Type != models.TypeExpense {
		return nil, errors.New("type must be income or expense")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("amount")), 64)
	if err != nil {
		return nil, errors.New("amount must be a number")
	}
	if amount < 0 {
		return nil, errors.New("amount cannot be negative")
	}
	f.Amount = amount

	if f.Category == "" {
		return nil, errors.New("category is required")
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		return nil, errors.New("date must be in YYYY-MM-DD format")
	}

	return f, nil
}

// AddForm renders the form to create a new transaction.
func (h *Handlers) AddForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "add.html", FormViewModel{
		Today: time.Now().Format("2006-01-02"),
	})
}

// Add handles the creation of a new transaction.
func (h *Handlers) Add(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	f, err := parseTransactionForm(r)
	if err != nil {
		h.render(w, r, "add.html", FormViewModel{
			Error: err.Error(),
			Today: time.Now().Format("2006-01-02"),
		})
		return
	}

	if err := h.db.CreateTransaction(account.ID, f.Type, f.Amount, f.Category, f.Description, f.Date); err != nil {
		log.Printf("CreateTransaction error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setFlash(w, "success", "Transaction added")
	http.Redirect(w, r, "/list", http.StatusFound)
}

// List renders the account's transactions, optionally filtered by type.
// An absent or unknown filter behaves as "all".
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	filterType := r.URL.Query().Get("type")
	if filterType != models.TypeIncome && filterType != models.TypeExpense {
		filterType = "all"
	}

	transactions, err := h.db.ListTransactions(account.ID, filterType)
	if err != nil {
		log.Printf("ListTransactions error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "list.html", ListViewModel{
		Transactions: transactions,
		FilterType:   filterType,
	})
}

// EditForm renders the pre-filled form for an owned transaction. A missing
// or non-owned id reports not-found and returns to the list.
func (h *Handlers) EditForm(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	transaction, err := h.db.GetTransaction(id, account.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.setFlash(w, "danger", "Transaction not found")
			http.Redirect(w, r, "/list", http.StatusFound)
			return
		}
		log.Printf("GetTransaction error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "add.html", FormViewModel{
		Transaction: transaction,
		IsEdit:      true,
		Today:       time.Now().Format("2006-01-02"),
	})
}

// Edit handles the edit form submission. The update is scoped by
// (id, account id); if the row vanished between view and submit the update
// silently affects zero rows.
func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f, err := parseTransactionForm(r)
	if err != nil {
		h.render(w, r, "add.html", FormViewModel{
			Transaction: &models.Transaction{ID: id},
			IsEdit:      true,
			Error:       err.Error(),
			Today:       time.Now().Format("2006-01-02"),
		})
		return
	}

	update := &models.Transaction{
		ID:          id,
		Type:        f.Type,
		Amount:      f.Amount,
		Category:    f.Category,
		Description: f.Description,
		Date:        f.Date,
	}
	if err := h.db.UpdateTransaction(account.ID, update); err != nil {
		log.Printf("UpdateTransaction error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setFlash(w, "success", "Transaction updated")
	http.Redirect(w, r, "/list", http.StatusFound)
}

// Delete removes an owned transaction. Deleting a nonexistent or non-owned
// id is a silent no-op; the user sees the same success notification.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	if err := h.db.DeleteTransaction(id, account.ID); err != nil {
		log.Printf("DeleteTransaction error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setFlash(w, "success", "Transaction deleted")
	http.Redirect(w, r, "/list", http.StatusFound)
}

// formatAmount renders an amount with two decimals for the views.
func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
