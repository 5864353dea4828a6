package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"divebooks/internal/core"
	"divebooks/internal/ledger/memory"
)

type fakePublisher struct {
	upserts []string
	deletes []string
	fail    bool
}

func (f *fakePublisher) PublishUpsert(_ context.Context, id string) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.upserts = append(f.upserts, id)
	return nil
}

func (f *fakePublisher) PublishDelete(_ context.Context, id string) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func sampleTx() core.Transaction {
	return core.Transaction{
		Type:     core.Expense,
		Category: "Fuel",
		Amount:   core.Money{Cents: 2500},
		Currency: core.EGP,
		Date:     time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreatePublishesUpsert(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.upserts) != 1 || pub.upserts[0] != created.ID {
		t.Errorf("upserts = %v, want [%s]", pub.upserts, created.ID)
	}
}

func TestUpdateAndDeletePublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := created
	upd.Category = "Equipment"
	if err := svc.UpdateTransaction(context.Background(), upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(pub.upserts) != 2 {
		t.Errorf("upserts after update = %v", pub.upserts)
	}

	if err := svc.DeleteTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != created.ID {
		t.Errorf("deletes = %v", pub.deletes)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &fakePublisher{fail: true}
	store := memory.New()
	svc := NewTransactionService(store, pub)

	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("create must succeed despite publish failure: %v", err)
	}
	if _, err := store.GetTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("transaction must be stored: %v", err)
	}
	if err := svc.DeleteTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("delete must succeed despite publish failure: %v", err)
	}
}

func TestNilPublisherIsFine(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	created, err := svc.CreateTransaction(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
	if err := svc.DeleteTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("delete without publisher: %v", err)
	}
}

func TestStoreFailureDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	bad := sampleTx()
	bad.Amount = core.Money{}
	if _, err := svc.CreateTransaction(context.Background(), bad); err == nil {
		t.Fatal("invalid transaction must fail")
	}
	if len(pub.upserts) != 0 {
		t.Errorf("no event may be published for a failed create, got %v", pub.upserts)
	}
}
