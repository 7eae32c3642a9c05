package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/db"
	"finance_webapp/internal/logger"
	"finance_webapp/internal/repository"
)

// Prepares the storage for the selected backend: runs the embedded Postgres
// migrations, or creates the DynamoDB table with its three indexes.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	backend := flag.String("backend", cfg.StoreBackend, "store backend: dynamodb or postgres")
	apply := flag.Bool("apply", false, "apply changes (default only prints the plan)")
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for a new DynamoDB table to become active")
	flag.Parse()

	cfg.StoreBackend = *backend
	if err := cfg.Validate(); err != nil {
		logger.Fatal("configuration error", "error", err)
	}

	ctx := context.Background()

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if !*apply {
			names, err := db.MigrationNames()
			if err != nil {
				logger.Fatal("read migrations", "error", err)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return
		}
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal("migration failed", "error", err)
		}

	case config.BackendDynamoDB:
		if !*apply {
			def := repository.TableDefinition(cfg.Dynamo.Table)
			fmt.Printf("table %s\n", cfg.Dynamo.Table)
			for _, gsi := range def.GlobalSecondaryIndexes {
				fmt.Printf("  index %s\n", *gsi.IndexName)
			}
			return
		}
		client, err := db.NewDynamoClient(ctx, cfg.Dynamo)
		if err != nil {
			logger.Fatal("dynamodb client", "error", err)
		}
		created, err := repository.NewDynamoTransactionRepository(client, cfg.Dynamo.Table).EnsureTable(ctx, *wait)
		if err != nil {
			logger.Fatal("create table failed", "table", cfg.Dynamo.Table, "error", err)
		}
		fmt.Printf("table %s ready (created=%v)\n", cfg.Dynamo.Table, created)

	default:
		logger.Fatal("nothing to migrate for backend", "backend", cfg.StoreBackend)
	}
}
