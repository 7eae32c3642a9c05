package repository

import (
	"sort"
	"testing"

	"finance_webapp/internal/domain"
)

func TestBuildKeys(t *testing.T) {
	tx := &domain.Transaction{
		UserID:    "abc-123",
		ID:        "01HRZ8Y3Q4C7W8N9P0K1M2N3B4",
		Timestamp: "2024-03-15T12:00:00.000Z",
		YearMonth: "2024-03",
		Direction: domain.DirectionCredit,
		Mode:      domain.ModeSalary,
	}
	BuildKeys(tx)

	cases := []struct {
		name, got, want string
	}{
		{"PK", tx.PK, "U#abc-123"},
		{"SK", tx.SK, "T#2024-03-15T12:00:00.000Z#01HRZ8Y3Q4C7W8N9P0K1M2N3B4"},
		{"GSI1PK", tx.GSI1PK, "U#abc-123#YM#2024-03"},
		{"GSI2PK", tx.GSI2PK, "U#abc-123#DIR#C"},
		{"GSI3PK", tx.GSI3PK, "U#abc-123#MODE#salary"},
		{"GSI1SK", tx.GSI1SK, tx.SK},
		{"GSI2SK", tx.GSI2SK, tx.SK},
		{"GSI3SK", tx.GSI3SK, tx.SK},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s = %q; want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestSortKeysOrderChronologically(t *testing.T) {
	keys := []string{
		BuildSortKey("2024-03-15T12:00:00.000Z", "01HS0000000000000000000002"),
		BuildSortKey("2023-12-31T12:00:00.000Z", "01HS0000000000000000000009"),
		BuildSortKey("2024-03-15T12:00:00.000Z", "01HS0000000000000000000001"),
		BuildSortKey("2024-01-02T12:00:00.000Z", "01HS0000000000000000000003"),
	}
	sort.Strings(keys)

	want := []string{
		"T#2023-12-31T12:00:00.000Z#01HS0000000000000000000009",
		"T#2024-01-02T12:00:00.000Z#01HS0000000000000000000003",
		"T#2024-03-15T12:00:00.000Z#01HS0000000000000000000001",
		"T#2024-03-15T12:00:00.000Z#01HS0000000000000000000002",
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q; want %q", i, keys[i], want[i])
		}
	}
}

func TestProjectionKey(t *testing.T) {
	if got := ProjectionKey(ProjectionDirection, "u1", domain.DirectionDebit.Code()); got != "U#u1#DIR#D" {
		t.Fatalf("unexpected direction key %q", got)
	}
	if got := ProjectionKey(Projection("GSI9"), "u1", "x"); got != "" {
		t.Fatalf("unknown projection should have no key, got %q", got)
	}
	if Projection("GSI9").Valid() || !ProjectionMode.Valid() {
		t.Fatal("unexpected projection validity")
	}
}

func TestCursorIsBoundToPartition(t *testing.T) {
	tx := &domain.Transaction{PK: "U#a", SK: "T#1#x", GSI1PK: "U#a#YM#2024-03"}
	cursor := cursorFor(tx, ProjectionYearMonth)

	key, err := decodeCursor(cursor, "GSI1PK", "U#a#YM#2024-03")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if key[attrSK] != "T#1#x" || key["GSI1SK"] != "T#1#x" || key[attrPK] != "U#a" {
		t.Fatalf("unexpected cursor key %v", key)
	}

	if _, err := decodeCursor(cursor, "GSI1PK", "U#b#YM#2024-03"); err != ErrInvalidCursor {
		t.Fatalf("cursor from another partition should be rejected, got %v", err)
	}
	if _, err := decodeCursor("%%%", attrPK, "U#a"); err != ErrInvalidCursor {
		t.Fatalf("garbage cursor should be rejected, got %v", err)
	}
	if key, err := decodeCursor("", attrPK, "U#a"); err != nil || key != nil {
		t.Fatalf("empty cursor should decode to nil, got %v %v", key, err)
	}
}
