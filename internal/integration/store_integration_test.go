package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/db"
	"finance_webapp/internal/domain"
	"finance_webapp/internal/repository"
	"finance_webapp/internal/service"
)

// exerciseStore runs the same scenario against a real backend through the
// service layer. Every run uses a fresh user id so reruns do not collide.
func exerciseStore(t *testing.T, store repository.TransactionStore) {
	t.Helper()
	ctx := context.Background()
	svc := service.NewTransactionServiceWithLimits(store, nil, 2, 10)
	userID := fmt.Sprintf("it-%d", time.Now().UnixNano())

	income, err := svc.Create(ctx, userID, service.CreateTransactionInput{
		Date: "2024-03-15", Kind: domain.KindIncome, Direction: domain.DirectionCredit,
		Mode: domain.ModeSalary, AmountCents: 500000,
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	for _, day := range []string{"2024-03-01", "2024-03-02", "2024-04-01"} {
		_, err := svc.Create(ctx, userID, service.CreateTransactionInput{
			Date: day, Kind: domain.KindExpense, Direction: domain.DirectionDebit,
			Mode: domain.ModeCreditCard, AmountCents: 1000, Description: "card " + day,
		})
		if err != nil {
			t.Fatalf("create expense %s: %v", day, err)
		}
	}

	got, err := svc.Get(ctx, userID, income.SK)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *income {
		t.Fatalf("get returned %+v; want %+v", got, income)
	}

	// walk March by pages of two, newest first
	var dates []string
	filter := domain.ListFilter{Month: "2024-03"}
	for i := 0; i < 5; i++ {
		page, err := svc.List(ctx, userID, filter)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, tx := range page.Items {
			dates = append(dates, tx.Date)
		}
		if page.NextCursor == "" {
			break
		}
		filter.Cursor = page.NextCursor
	}
	if fmt.Sprint(dates) != "[2024-03-15 2024-03-02 2024-03-01]" {
		t.Fatalf("march dates = %v", dates)
	}

	mode := domain.ModeTransfer
	if err := svc.Update(ctx, userID, income.SK, domain.TransactionPatch{Mode: &mode}); err != nil {
		t.Fatalf("update: %v", err)
	}
	page, err := svc.List(ctx, userID, domain.ListFilter{Mode: domain.ModeTransfer})
	if err != nil || len(page.Items) != 1 || page.Items[0].SK != income.SK {
		t.Fatalf("mode projection after update: %+v, %v", page.Items, err)
	}
	if err := svc.Update(ctx, userID, "T#2000-01-01T12:00:00.000Z#missing", domain.TransactionPatch{Mode: &mode}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing = %v; want not found", err)
	}

	if err := svc.Delete(ctx, userID, income.SK); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, userID, income.SK); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after delete = %v", err)
	}
	if err := svc.Delete(ctx, userID, income.SK); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := db.RunMigrations(dsn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	pool, err := db.Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	exerciseStore(t, repository.NewTransactionRepository(pool))
}

func TestDynamoStore(t *testing.T) {
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DYNAMODB_ENDPOINT not set")
	}

	ctx := context.Background()
	client, err := db.NewDynamoClient(ctx, config.DynamoConfig{
		Region:            "us-east-1",
		Endpoint:          endpoint,
		CredentialSources: []string{config.CredentialSourceEnv},
		AccessKeyID:       "local",
		SecretAccessKey:   "local",
	})
	if err != nil {
		t.Fatalf("dynamodb client: %v", err)
	}

	repo := repository.NewDynamoTransactionRepository(client, fmt.Sprintf("transactions-it-%d", time.Now().Unix()))
	if _, err := repo.EnsureTable(ctx, time.Minute); err != nil {
		t.Fatalf("ensure table: %v", err)
	}

	exerciseStore(t, repository.NewInstrumentedStore(repo, "dynamodb_it"))
}
