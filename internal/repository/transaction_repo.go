package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository stores the single-table layout in Postgres: the key
// attributes are plain columns and every projection has its own index.
type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, gsi3pk, gsi3sk,
	user_id, id, ts, date, year_month, kind, direction, mode, COALESCE(description, ''), currency, amount_cents`

// Get returns a single transaction by key
func (r *TransactionRepository) Get(ctx context.Context, userID, sortKey string) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE pk = $1 AND sk = $2`,
		BuildPrimaryKey(userID), sortKey,
	)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("select transaction", err)
	}
	return tx, nil
}

// Put inserts a new transaction
func (r *TransactionRepository) Put(ctx context.Context, tx *domain.Transaction) error {
	var description *string
	if tx.Description != "" {
		description = &tx.Description
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO transactions
			(pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, gsi3pk, gsi3sk,
			 user_id, id, ts, date, year_month, kind, direction, mode, description, currency, amount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		tx.PK, tx.SK, tx.GSI1PK, tx.GSI1SK, tx.GSI2PK, tx.GSI2SK, tx.GSI3PK, tx.GSI3SK,
		tx.UserID, tx.ID, tx.Timestamp, tx.Date, tx.YearMonth,
		string(tx.Kind), string(tx.Direction), string(tx.Mode), description, tx.Currency, tx.AmountCents,
	)
	if err != nil {
		return storeErr("insert transaction", err)
	}
	return nil
}

// UpdateFields sets the present patch fields in one statement. Changing the
// mode moves the record to the matching mode projection.
func (r *TransactionRepository) UpdateFields(ctx context.Context, userID, sortKey string, patch domain.TransactionPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	args := []any{BuildPrimaryKey(userID), sortKey}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Mode != nil {
		set("mode", string(*patch.Mode))
		set("gsi3pk", ProjectionKey(ProjectionMode, userID, string(*patch.Mode)))
	}
	if patch.AmountCents != nil {
		set("amount_cents", *patch.AmountCents)
	}
	if patch.Currency != nil {
		set("currency", *patch.Currency)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE transactions SET `+strings.Join(sets, ", ")+` WHERE pk = $1 AND sk = $2`,
		args...,
	)
	if err != nil {
		return storeErr("update transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a transaction and reports whether it existed
func (r *TransactionRepository) Delete(ctx context.Context, userID, sortKey string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM transactions WHERE pk = $1 AND sk = $2`,
		BuildPrimaryKey(userID), sortKey,
	)
	if err != nil {
		return false, storeErr("delete transaction", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QueryByPrimary walks a user's partition in sort key order
func (r *TransactionRepository) QueryByPrimary(ctx context.Context, userID string, opts QueryOptions) (domain.Page, error) {
	return r.query(ctx, "", "pk", "sk", attrPK, BuildPrimaryKey(userID), opts)
}

// QueryByProjection walks one projection partition in sort key order
func (r *TransactionRepository) QueryByProjection(ctx context.Context, p Projection, projectionKey string, opts QueryOptions) (domain.Page, error) {
	pkAttr, skAttr := p.attributes()
	if pkAttr == "" {
		return domain.Page{}, fmt.Errorf("%w: unknown projection %q", domain.ErrValidation, p)
	}
	return r.query(ctx, p, strings.ToLower(pkAttr), strings.ToLower(skAttr), pkAttr, projectionKey, opts)
}

// query fetches one extra row to learn whether another page exists. Column
// names come from the fixed projection table, never from input.
func (r *TransactionRepository) query(ctx context.Context, p Projection, pkColumn, skColumn, pkAttr, pkValue string, opts QueryOptions) (domain.Page, error) {
	after, err := decodeCursor(opts.Cursor, pkAttr, pkValue)
	if err != nil {
		return domain.Page{}, err
	}

	order, cmp := "ASC", ">"
	if opts.Descending {
		order, cmp = "DESC", "<"
	}

	args := []any{pkValue}
	sql := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + pkColumn + ` = $1`
	if after != nil {
		args = append(args, after[attrSK])
		sql += fmt.Sprintf(" AND %s %s $%d", skColumn, cmp, len(args))
	}
	sql += fmt.Sprintf(" ORDER BY %s %s", skColumn, order)
	if opts.Limit > 0 {
		args = append(args, opts.Limit+1)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return domain.Page{}, storeErr("query transactions", err)
	}
	defer rows.Close()

	items, err := r.scanRows(rows)
	if err != nil {
		return domain.Page{}, storeErr("scan transactions", err)
	}

	page := domain.Page{Items: items}
	if opts.Limit > 0 && len(items) > opts.Limit {
		page.Items = items[:opts.Limit]
		page.NextCursor = cursorFor(page.Items[opts.Limit-1], p)
	}
	return page, nil
}

func (r *TransactionRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Helper to scan rows into Transaction slice
func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*domain.Transaction, error) {
	result := make([]*domain.Transaction, 0)

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}

	return result, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := row.Scan(
		&tx.PK, &tx.SK, &tx.GSI1PK, &tx.GSI1SK, &tx.GSI2PK, &tx.GSI2SK, &tx.GSI3PK, &tx.GSI3SK,
		&tx.UserID, &tx.ID, &tx.Timestamp, &tx.Date, &tx.YearMonth,
		&tx.Kind, &tx.Direction, &tx.Mode, &tx.Description, &tx.Currency, &tx.AmountCents,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}
