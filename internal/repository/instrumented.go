package repository

import (
	"context"
	"errors"
	"time"

	"finance_webapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_store_operations_total",
			Help: "Transaction store calls by backend, operation and outcome",
		},
		[]string{"backend", "operation", "outcome"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transaction_store_operation_seconds",
			Help:    "Transaction store call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)
)

func init() {
	prometheus.MustRegister(StoreOperations)
	prometheus.MustRegister(StoreLatency)
}

// InstrumentedStore records a counter and a latency sample for every call
// made to the wrapped store.
type InstrumentedStore struct {
	next    TransactionStore
	backend string
}

func NewInstrumentedStore(next TransactionStore, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, domain.ErrValidation):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	StoreOperations.WithLabelValues(s.backend, op, outcome).Inc()
	StoreLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Get(ctx context.Context, userID, sortKey string) (tx *domain.Transaction, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, userID, sortKey)
}

func (s *InstrumentedStore) Put(ctx context.Context, tx *domain.Transaction) (err error) {
	defer func(start time.Time) { s.observe("put", start, err) }(time.Now())
	return s.next.Put(ctx, tx)
}

func (s *InstrumentedStore) UpdateFields(ctx context.Context, userID, sortKey string, patch domain.TransactionPatch) (err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())
	return s.next.UpdateFields(ctx, userID, sortKey, patch)
}

func (s *InstrumentedStore) Delete(ctx context.Context, userID, sortKey string) (existed bool, err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, userID, sortKey)
}

func (s *InstrumentedStore) QueryByPrimary(ctx context.Context, userID string, opts QueryOptions) (page domain.Page, err error) {
	defer func(start time.Time) { s.observe("query_primary", start, err) }(time.Now())
	return s.next.QueryByPrimary(ctx, userID, opts)
}

func (s *InstrumentedStore) QueryByProjection(ctx context.Context, p Projection, projectionKey string, opts QueryOptions) (page domain.Page, err error) {
	defer func(start time.Time) { s.observe("query_"+string(p), start, err) }(time.Now())
	return s.next.QueryByProjection(ctx, p, projectionKey, opts)
}

func (s *InstrumentedStore) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("ping", start, err) }(time.Now())
	return s.next.Ping(ctx)
}
