package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"divebooks/internal/core"
	"divebooks/internal/ledger"
)

// RecurringProcessor turns recurring transaction templates into dated ledger
// entries. The generated entry is a plain (non-recurring) copy stamped with
// the processing time; the template itself records when it last fired.
type RecurringProcessor struct {
	templates ledger.RecurringStore
	writer    ledger.TransactionStore
}

func NewRecurringProcessor(templates ledger.RecurringStore, writer ledger.TransactionStore) *RecurringProcessor {
	return &RecurringProcessor{templates: templates, writer: writer}
}

// ProcessDue generates entries for every template that is due at now and
// returns how many were created. Failures on individual templates are logged
// and skipped so one bad row cannot stall the rest.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.templates == nil || p.writer == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.templates.ListRecurringTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_templates", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, tpl := range templates {
		checker, err := CheckerFor(tpl.Transaction.RecurringPeriod)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template with unknown period",
				"id", tpl.Transaction.ID,
				"period", tpl.Transaction.RecurringPeriod)
			continue
		}

		// A template that has never fired only becomes due once its own
		// date has passed.
		last := tpl.LastGeneratedAt
		if last.IsZero() && now.Before(tpl.Transaction.Date) {
			continue
		}
		if !checker.IsDue(last, now, tpl.Transaction.Date) {
			continue
		}

		entry := core.Transaction{
			Type:          tpl.Transaction.Type,
			Category:      tpl.Transaction.Category,
			Subcategory:   tpl.Transaction.Subcategory,
			Amount:        tpl.Transaction.Amount,
			Currency:      tpl.Transaction.Currency,
			PaymentMethod: tpl.Transaction.PaymentMethod,
			Status:        tpl.Transaction.Status,
			Description:   tpl.Transaction.Description,
			Date:          now,
			CreatedBy:     tpl.Transaction.CreatedBy,
		}

		created, err := p.writer.CreateTransaction(ctx, entry)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from template",
				"template_id", tpl.Transaction.ID,
				"error", err)
			continue
		}

		if err := p.templates.MarkGenerated(ctx, tpl.Transaction.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to mark template as generated",
				"template_id", tpl.Transaction.ID,
				"error", err)
			continue
		}

		slog.InfoContext(ctx, "Generated recurring transaction",
			"template_id", tpl.Transaction.ID,
			"entry_id", created.ID,
			"period", tpl.Transaction.RecurringPeriod)
		processed++
	}

	return processed, nil
}
