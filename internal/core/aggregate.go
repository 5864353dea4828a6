package core

import (
	"sort"
	"time"
)

// CurrencyAmount is one per-currency total produced by aggregation.
type CurrencyAmount struct {
	Currency Currency
	Amount   Money
}

// DateRange bounds an aggregation window. A zero From or To leaves that side
// unbounded. From is inclusive, To is exclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// SumByCurrency sums transaction amounts of the given type within the range,
// grouped by currency. Currencies with a zero total are omitted. The result
// is sorted by currency code so output is stable.
func SumByCurrency(txs []Transaction, typ TransactionType, r DateRange) []CurrencyAmount {
	totals := make(map[Currency]int64)
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		if !r.contains(t.Date) {
			continue
		}
		totals[t.Currency] += t.Amount.Cents
	}

	out := make([]CurrencyAmount, 0, len(totals))
	for c, cents := range totals {
		if cents == 0 {
			continue
		}
		out = append(out, CurrencyAmount{Currency: c, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// DashboardMetrics are the pre-aggregated per-currency totals shown on the
// dashboard tiles, plus the most recent entries.
type DashboardMetrics struct {
	TodayIncome     []CurrencyAmount
	TodayExpenses   []CurrencyAmount
	MonthlyIncome   []CurrencyAmount
	MonthlyExpenses []CurrencyAmount
	YearlyIncome    []CurrencyAmount
	YearlyExpenses  []CurrencyAmount
	Recent          []Transaction
}

const recentLimit = 10

// BuildDashboardMetrics aggregates today/month/year windows relative to now.
// txs is expected to be sorted date-descending, as returned by the stores.
func BuildDashboardMetrics(txs []Transaction, now time.Time) DashboardMetrics {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	m := DashboardMetrics{
		TodayIncome:     SumByCurrency(txs, Income, DateRange{From: today}),
		TodayExpenses:   SumByCurrency(txs, Expense, DateRange{From: today}),
		MonthlyIncome:   SumByCurrency(txs, Income, DateRange{From: monthStart}),
		MonthlyExpenses: SumByCurrency(txs, Expense, DateRange{From: monthStart}),
		YearlyIncome:    SumByCurrency(txs, Income, DateRange{From: yearStart}),
		YearlyExpenses:  SumByCurrency(txs, Expense, DateRange{From: yearStart}),
	}
	if len(txs) > recentLimit {
		m.Recent = append(m.Recent, txs[:recentLimit]...)
	} else {
		m.Recent = append(m.Recent, txs...)
	}
	return m
}

// CategoryTotal is one row of a report breakdown: per-currency sums for a
// category plus an approximate EGP figure for chart scaling. ApproxEGP uses
// the fixed display rate and is never persisted.
type CategoryTotal struct {
	Category  string
	Amounts   []CurrencyAmount
	ApproxEGP Money
}

// BreakdownByCategory groups transactions of one type by category within the
// range. Rows are sorted by descending approximate EGP total.
func BreakdownByCategory(txs []Transaction, typ TransactionType, r DateRange) []CategoryTotal {
	byCat := make(map[string][]Transaction)
	for _, t := range txs {
		if t.Type != typ || !r.contains(t.Date) {
			continue
		}
		byCat[t.Category] = append(byCat[t.Category], t)
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for cat, group := range byCat {
		row := CategoryTotal{
			Category: cat,
			Amounts:  SumByCurrency(group, typ, r),
		}
		for _, t := range group {
			row.ApproxEGP.Cents += ApproxEGP(t.Amount, t.Currency).Cents
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ApproxEGP.Cents != out[j].ApproxEGP.Cents {
			return out[i].ApproxEGP.Cents > out[j].ApproxEGP.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}
