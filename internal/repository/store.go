package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"finance_webapp/internal/domain"
)

// TransactionStore is the gateway to the single transactions table.
type TransactionStore interface {
	// Get returns domain.ErrNotFound when no record has that key.
	Get(ctx context.Context, userID, sortKey string) (*domain.Transaction, error)
	// Put writes the full record including its projection keys.
	Put(ctx context.Context, tx *domain.Transaction) error
	// UpdateFields sets the fields present in patch in one atomic write.
	// The record must exist.
	UpdateFields(ctx context.Context, userID, sortKey string, patch domain.TransactionPatch) error
	// Delete reports whether a record was removed. A missing key is not an error.
	Delete(ctx context.Context, userID, sortKey string) (bool, error)
	QueryByPrimary(ctx context.Context, userID string, opts QueryOptions) (domain.Page, error)
	QueryByProjection(ctx context.Context, p Projection, projectionKey string, opts QueryOptions) (domain.Page, error)
	Ping(ctx context.Context) error
}

type QueryOptions struct {
	Limit      int
	Descending bool
	Cursor     string
}

var ErrInvalidCursor = fmt.Errorf("%w: invalid cursor", domain.ErrValidation)

// Cursors carry the key attributes of the last returned record, the same
// shape as a DynamoDB LastEvaluatedKey restricted to string attributes.
func encodeCursor(key map[string]string) string {
	if len(key) == 0 {
		return ""
	}
	b, _ := json.Marshal(key)
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeCursor also checks that the cursor belongs to the partition being
// queried, so a cursor cannot be replayed against another user.
func decodeCursor(cursor, partitionAttr, partitionValue string) (map[string]string, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var key map[string]string
	if err := json.Unmarshal(b, &key); err != nil {
		return nil, ErrInvalidCursor
	}
	if key[partitionAttr] != partitionValue || key[attrSK] == "" {
		return nil, ErrInvalidCursor
	}
	return key, nil
}

// cursorFor builds the cursor pointing after tx for the given lookup path.
func cursorFor(tx *domain.Transaction, p Projection) string {
	key := map[string]string{attrPK: tx.PK, attrSK: tx.SK}
	if p != "" {
		pkAttr, skAttr := p.attributes()
		key[pkAttr] = projectionPK(tx, p)
		key[skAttr] = tx.SK
	}
	return encodeCursor(key)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}
