package http

import (
	"fmt"
	"strings"
	"time"

	"divebooks/internal/core"
)

// transactionJSON is the wire shape of a transaction. Field names are
// camelCase and amounts travel as decimal numbers; cents are an internal
// representation only.
type transactionJSON struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentMethod   string  `json:"paymentMethod"`
	Status          string  `json:"status"`
	Description     string  `json:"description"`
	Date            string  `json:"date"`
	CreatedBy       string  `json:"createdBy"`
	Recurring       bool    `json:"recurring"`
	RecurringPeriod string  `json:"recurringPeriod,omitempty"`
}

// Accepted request date layouts, tried in order. Responses always use RFC3339.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseWireDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func (p transactionJSON) toCore() (core.Transaction, error) {
	date, err := parseWireDate(p.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:              strings.TrimSpace(p.ID),
		Type:            core.TransactionType(strings.TrimSpace(p.Type)),
		Category:        sanitizeInput(p.Category),
		Subcategory:     sanitizeInput(p.Subcategory),
		Amount:          core.MoneyFromDecimal(p.Amount),
		Currency:        core.Currency(strings.TrimSpace(p.Currency)),
		PaymentMethod:   core.PaymentMethod(strings.TrimSpace(p.PaymentMethod)),
		Status:          core.PaymentStatus(strings.TrimSpace(p.Status)),
		Description:     sanitizeInput(p.Description),
		Date:            date,
		CreatedBy:       sanitizeInput(p.CreatedBy),
		Recurring:       p.Recurring,
		RecurringPeriod: core.RecurrencePeriod(strings.TrimSpace(p.RecurringPeriod)),
	}, nil
}

func fromCore(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:              t.ID,
		Type:            string(t.Type),
		Category:        t.Category,
		Subcategory:     t.Subcategory,
		Amount:          t.Amount.Decimal(),
		Currency:        string(t.Currency),
		PaymentMethod:   string(t.PaymentMethod),
		Status:          string(t.Status),
		Description:     t.Description,
		Date:            t.Date.UTC().Format(time.RFC3339),
		CreatedBy:       t.CreatedBy,
		Recurring:       t.Recurring,
		RecurringPeriod: string(t.RecurringPeriod),
	}
}

func fromCoreList(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, fromCore(t))
	}
	return out
}

// applyDefaults fills the optional fields a minimal create request may omit.
func applyDefaults(t core.Transaction, now time.Time) core.Transaction {
	if t.Currency == "" {
		t.Currency = core.EGP
	}
	if t.PaymentMethod == "" {
		t.PaymentMethod = core.Cash
	}
	if t.Status == "" {
		t.Status = core.Paid
	}
	if t.Date.IsZero() {
		t.Date = now.UTC()
	}
	return t
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
