// Package ledger defines the outbound ports the HTTP layer and workers use
// to reach a transaction/user store, so handlers can run against SQLite in
// production and an in-memory store in tests.
package ledger

import (
	"context"
	"errors"
	"time"

	"divebooks/internal/core"
)

var (
	// ErrNotFound is returned when an id does not match any transaction.
	ErrNotFound = errors.New("transaction not found")
	// ErrUserNotFound is returned for unknown usernames. Callers must not
	// surface it differently from a bad password.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when seeding an already-taken username.
	ErrDuplicateUser = errors.New("username already taken")
)

type (
	TransactionStore interface {
		// ListTransactions returns every transaction, date descending.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// CreateTransaction persists t, assigning a fresh id when t.ID is
		// empty, and returns the stored row.
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// UpdateTransaction replaces every mutable field of the row matching
		// t.ID. CreatedBy is never written.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	UserStore interface {
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		CreateUser(ctx context.Context, u core.User) (core.User, error)
	}

	// RecurringTemplate pairs a recurring transaction with the time its last
	// occurrence was generated (zero when none has been yet).
	RecurringTemplate struct {
		Transaction     core.Transaction
		LastGeneratedAt time.Time
	}

	// RecurringStore is implemented by stores that can drive the
	// recurring-worker.
	RecurringStore interface {
		ListRecurringTemplates(ctx context.Context) ([]RecurringTemplate, error)
		MarkGenerated(ctx context.Context, id string, at time.Time) error
	}
)
