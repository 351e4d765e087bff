package handlers

import (
	"log"
	"net/http"

	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/models"
)

// RecentItem represents a transaction row on the dashboard.
type RecentItem struct {
	models.Transaction
	FormattedAmount string
	IsIncome        bool
}

// SummaryViewModel is the data passed to the dashboard template.
type SummaryViewModel struct {
	Income     string
	Expense    string
	Balance    string
	TotalCount int
	Recent     []RecentItem
}

// Index renders the summary dashboard: total income, total expense, the
// derived balance, the five most recent transactions and the record count.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	summary, err := h.db.Summarize(account.ID)
	if err != nil {
		log.Printf("Summarize error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := SummaryViewModel{
		Income:     formatAmount(summary.Income),
		Expense:    formatAmount(summary.Expense),
		Balance:    formatAmount(summary.Balance),
		TotalCount: summary.TotalCount,
	}
	for _, t := range summary.Recent {
		vm.Recent = append(vm.Recent, RecentItem{
			Transaction:     t,
			FormattedAmount: formatAmount(t.Amount),
			IsIncome:        t.Type == models.TypeIncome,
		})
	}

	h.render(w, r, "index.html", vm)
}
