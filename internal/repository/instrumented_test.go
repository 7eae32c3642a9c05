package repository

import (
	"context"
	"testing"

	"finance_webapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentedStoreCountsOutcomes(t *testing.T) {
	store := NewInstrumentedStore(NewMemoryTransactionRepository(), "memory_test")
	ctx := context.Background()

	okBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("memory_test", "put", "ok"))
	missBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("memory_test", "get", "not_found"))

	tx := newTx("u1", "2024-03-15", "01A", domain.KindIncome, domain.ModeSalary, 1)
	if err := store.Put(ctx, tx); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "u1", "T#missing"); err == nil {
		t.Fatal("expected not found")
	}

	if got := testutil.ToFloat64(StoreOperations.WithLabelValues("memory_test", "put", "ok")); got != okBefore+1 {
		t.Fatalf("put ok counter = %v; want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(StoreOperations.WithLabelValues("memory_test", "get", "not_found")); got != missBefore+1 {
		t.Fatalf("get not_found counter = %v; want %v", got, missBefore+1)
	}
}
