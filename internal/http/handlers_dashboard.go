package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"divebooks/internal/core"
)

type currencyAmountJSON struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

func fromCurrencyAmounts(amounts []core.CurrencyAmount) []currencyAmountJSON {
	out := make([]currencyAmountJSON, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, currencyAmountJSON{
			Currency: string(a.Currency),
			Amount:   a.Amount.Decimal(),
		})
	}
	return out
}

type dashboardMetricsJSON struct {
	TodayIncome     []currencyAmountJSON `json:"todayIncome"`
	TodayExpenses   []currencyAmountJSON `json:"todayExpenses"`
	MonthlyIncome   []currencyAmountJSON `json:"monthlyIncome"`
	MonthlyExpenses []currencyAmountJSON `json:"monthlyExpenses"`
	YearlyIncome    []currencyAmountJSON `json:"yearlyIncome"`
	YearlyExpenses  []currencyAmountJSON `json:"yearlyExpenses"`
	MonthlyNetUSD   float64              `json:"monthlyNetApproxUSD"`
	Recent          []transactionJSON    `json:"recent"`
}

// handleDashboardMetrics aggregates the today/month/year tiles server-side so
// the dashboard needs a single request instead of re-summing the full list.
func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard metrics list failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to fetch transactions.")
		return
	}

	m := core.BuildDashboardMetrics(txs, time.Now())

	// Approximate display figure only; per-currency totals are the real data.
	netUSD := core.ApproxUSD(m.MonthlyIncome).Decimal() - core.ApproxUSD(m.MonthlyExpenses).Decimal()

	writeJSON(w, http.StatusOK, dashboardMetricsJSON{
		TodayIncome:     fromCurrencyAmounts(m.TodayIncome),
		TodayExpenses:   fromCurrencyAmounts(m.TodayExpenses),
		MonthlyIncome:   fromCurrencyAmounts(m.MonthlyIncome),
		MonthlyExpenses: fromCurrencyAmounts(m.MonthlyExpenses),
		YearlyIncome:    fromCurrencyAmounts(m.YearlyIncome),
		YearlyExpenses:  fromCurrencyAmounts(m.YearlyExpenses),
		MonthlyNetUSD:   netUSD,
		Recent:          fromCoreList(m.Recent),
	})
}

type categoryTotalJSON struct {
	Category  string               `json:"category"`
	Amounts   []currencyAmountJSON `json:"amounts"`
	ApproxEGP float64              `json:"approxEGP"`
}

// handleCategoryReport serves per-category totals for a date window.
// Query parameters: from and to (dates, both optional, to is inclusive) and
// type (income|expense, default expense).
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	typ := core.Expense
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		typ = core.TransactionType(v)
		if !typ.Valid() {
			writeMessage(w, http.StatusBadRequest, "Invalid report type.")
			return
		}
	}

	from, err := parseWireDate(r.URL.Query().Get("from"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid date range.")
		return
	}
	to, err := parseWireDate(r.URL.Query().Get("to"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid date range.")
		return
	}
	if !to.IsZero() {
		// The range's upper bound is exclusive; shift so the `to` day counts.
		to = to.Add(24 * time.Hour)
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category report list failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to fetch transactions.")
		return
	}

	rows := core.BreakdownByCategory(txs, typ, core.DateRange{From: from, To: to})
	out := make([]categoryTotalJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryTotalJSON{
			Category:  row.Category,
			Amounts:   fromCurrencyAmounts(row.Amounts),
			ApproxEGP: row.ApproxEGP.Decimal(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
