package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/db"
	"finance_webapp/internal/domain"
	"finance_webapp/internal/logger"
	"finance_webapp/internal/service"
)

type seedRow struct {
	day    int
	kind   domain.Kind
	mode   domain.Mode
	amount string
	desc   string
}

// one month of typical household entries
var demoMonth = []seedRow{
	{1, domain.KindIncome, domain.ModeSalary, "2450,00", "salary"},
	{2, domain.KindExpense, domain.ModeDirectDebit, "850", "rent"},
	{3, domain.KindExpense, domain.ModeCreditCard, "64.37", "groceries"},
	{7, domain.KindExpense, domain.ModeDirectDebit, "39.90", "internet"},
	{12, domain.KindIncome, domain.ModeInboundTransfer, "120.5", "shared dinner refund"},
	{15, domain.KindExpense, domain.ModeCreditCard, "23,10", "pharmacy"},
	{20, domain.KindExpense, domain.ModeTransfer, "200", "savings"},
	{26, domain.KindIncome, domain.ModeCash, "40", "sold bike parts"},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	userID := flag.String("user", "", "user id (identity subject) to seed records for")
	month := flag.String("month", time.Now().Format("2006-01"), "month to seed, YYYY-MM")
	flag.Parse()

	if *userID == "" {
		logger.Fatal("-user is required")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("configuration error", "error", err)
	}

	ctx := context.Background()
	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open transaction store", "error", err)
	}
	defer store.Close()

	svc := service.NewTransactionService(store, service.NewTransactionValidator())

	for _, row := range demoMonth {
		cents, err := domain.ParseAmountToCents(row.amount)
		if err != nil {
			logger.Fatal("bad seed amount", "amount", row.amount, "error", err)
		}
		tx, err := svc.Create(ctx, *userID, service.CreateTransactionInput{
			Date:        fmt.Sprintf("%s-%02d", *month, row.day),
			Kind:        row.kind,
			Direction:   row.kind.Direction(),
			Mode:        row.mode,
			Description: row.desc,
			AmountCents: cents,
		})
		if err != nil {
			logger.Fatal("create failed", "date", row.day, "error", err)
		}
		logger.Info("seeded", "sk", tx.SK, "amount", domain.FormatCents(tx.AmountCents))
	}

	sum, err := svc.Summary(ctx, *userID, domain.ListFilter{Month: *month})
	if err != nil {
		logger.Fatal("summary failed", "error", err)
	}
	for _, code := range sum.CurrencyCodes() {
		t := sum.Currencies[code]
		fmt.Printf("%s income=%s expense=%s balance=%s\n", code,
			domain.FormatCents(t.IncomeCents), domain.FormatCents(t.ExpenseCents), t.Balance)
	}
	fmt.Printf("%d records in %s\n", sum.Count, *month)
}
