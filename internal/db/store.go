package db

import (
	"context"
	"fmt"

	"finance_webapp/internal/config"
	"finance_webapp/internal/repository"
)

// Store is the transaction store selected by STORE_BACKEND, wrapped with
// metrics. Close releases the underlying client.
type Store struct {
	repository.TransactionStore
	Backend string
	close   func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore constructs the one store client the process uses.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		store   repository.TransactionStore
		closeFn func()
	)

	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		client, err := NewDynamoClient(ctx, cfg.Dynamo)
		if err != nil {
			return nil, fmt.Errorf("dynamodb client: %w", err)
		}
		store = repository.NewDynamoTransactionRepository(client, cfg.Dynamo.Table)

	case config.BackendPostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = repository.NewTransactionRepository(pool)
		closeFn = pool.Close

	case config.BackendMemory:
		store = repository.NewMemoryTransactionRepository()

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return &Store{
		TransactionStore: repository.NewInstrumentedStore(store, cfg.StoreBackend),
		Backend:          cfg.StoreBackend,
		close:            closeFn,
	}, nil
}
