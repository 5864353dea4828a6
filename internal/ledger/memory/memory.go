// Package memory provides an in-memory ledger store. It backs the test suite
// and the DATA_BACKEND=memory mode used for local development without a
// database file.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"divebooks/internal/core"
	"divebooks/internal/ledger"
)

type Store struct {
	mu        sync.Mutex
	items     []core.Transaction
	users     map[string]core.User
	nextUser  int64
	generated map[string]time.Time
}

func New() *Store {
	return &Store{
		users:     make(map[string]core.User),
		nextUser:  1,
		generated: make(map[string]time.Time),
	}
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, ledger.ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.items = append(s.items, t)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.ID == t.ID {
			t.CreatedBy = existing.CreatedBy // immutable after create
			s.items[i] = t
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			delete(s.generated, id)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return core.User{}, ledger.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return core.User{}, ledger.ErrDuplicateUser
	}
	u.ID = s.nextUser
	s.nextUser++
	s.users[u.Username] = u
	return u, nil
}

func (s *Store) ListRecurringTemplates(_ context.Context) ([]ledger.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.RecurringTemplate
	for _, t := range s.items {
		if t.Recurring {
			out = append(out, ledger.RecurringTemplate{
				Transaction:     t,
				LastGeneratedAt: s.generated[t.ID],
			})
		}
	}
	return out, nil
}

func (s *Store) MarkGenerated(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			s.generated[id] = at
			return nil
		}
	}
	return ledger.ErrNotFound
}
