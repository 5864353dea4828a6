// Package storage implements the ledger ports over SQLite using the pure-Go
// modernc driver. Schema lives in embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"divebooks/internal/core"
	"divebooks/internal/ledger"
)

// Dates are stored as RFC3339 UTC strings so lexicographic ORDER BY matches
// chronological order.
const dateFormat = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ ledger.TransactionStore = (*SQLiteRepository)(nil)
	_ ledger.UserStore        = (*SQLiteRepository)(nil)
	_ ledger.RecurringStore   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, type, category, subcategory, amount_cents, currency,
	payment_method, status, description, date, created_by, recurring, recurring_period`

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, type, category, subcategory, amount_cents, currency, payment_method,
		  status, description, date, created_by, recurring, recurring_period)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Type), t.Category, t.Subcategory, t.Amount.Cents,
		string(t.Currency), string(t.PaymentMethod), string(t.Status),
		t.Description, t.Date.UTC().Format(dateFormat), t.CreatedBy,
		boolToInt(t.Recurring), nullablePeriod(t.RecurringPeriod))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"currency", t.Currency)
	return t, nil
}

// UpdateTransaction replaces every mutable field of the matching row. The
// created_by column is deliberately absent from the statement: who recorded
// an entry never changes after creation.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, category = ?, subcategory = ?, amount_cents = ?, currency = ?,
		     payment_method = ?, status = ?, description = ?, date = ?,
		     recurring = ?, recurring_period = ?
		 WHERE id = ?`,
		string(t.Type), t.Category, t.Subcategory, t.Amount.Cents,
		string(t.Currency), string(t.PaymentMethod), string(t.Status),
		t.Description, t.Date.UTC().Format(dateFormat),
		boolToInt(t.Recurring), nullablePeriod(t.RecurringPeriod), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, name, role FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ledger.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password, name, role) VALUES (?, ?, ?, ?) RETURNING id`,
		u.Username, u.PasswordHash, u.Name, string(u.Role)).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ledger.ErrDuplicateUser
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListRecurringTemplates(ctx context.Context) ([]ledger.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`, last_generated_at
		 FROM transactions WHERE recurring = 1 ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()

	var out []ledger.RecurringTemplate
	for rows.Next() {
		var (
			t       core.Transaction
			period  sql.NullString
			rec     int64
			date    string
			lastGen sql.NullString
		)
		err := rows.Scan(&t.ID, &t.Type, &t.Category, &t.Subcategory, &t.Amount.Cents,
			&t.Currency, &t.PaymentMethod, &t.Status, &t.Description, &date,
			&t.CreatedBy, &rec, &period, &lastGen)
		if err != nil {
			return nil, fmt.Errorf("scan recurring template: %w", err)
		}
		t.Recurring = rec != 0
		if period.Valid {
			t.RecurringPeriod = core.RecurrencePeriod(period.String)
		}
		if t.Date, err = parseStoredDate(date); err != nil {
			return nil, err
		}
		tpl := ledger.RecurringTemplate{Transaction: t}
		if lastGen.Valid && lastGen.String != "" {
			if tpl.LastGeneratedAt, err = parseStoredDate(lastGen.String); err != nil {
				return nil, err
			}
		}
		out = append(out, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring templates: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkGenerated(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET last_generated_at = ? WHERE id = ?`,
		at.UTC().Format(dateFormat), id)
	if err != nil {
		return fmt.Errorf("mark generated: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark generated rows affected: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		period sql.NullString
		rec    int64
		date   string
	)
	err := row.Scan(&t.ID, &t.Type, &t.Category, &t.Subcategory, &t.Amount.Cents,
		&t.Currency, &t.PaymentMethod, &t.Status, &t.Description, &date,
		&t.CreatedBy, &rec, &period)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Recurring = rec != 0
	if period.Valid {
		t.RecurringPeriod = core.RecurrencePeriod(period.String)
	}
	if t.Date, err = parseStoredDate(date); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func parseStoredDate(s string) (time.Time, error) {
	ts, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return ts, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullablePeriod(p core.RecurrencePeriod) any {
	if p == "" {
		return nil
	}
	return string(p)
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text; the
	// driver does not export a typed error for them.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
