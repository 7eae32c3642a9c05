package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/domain"
	httpapi "finance_webapp/internal/http"
	"finance_webapp/internal/http/middleware"
	"finance_webapp/internal/repository"
	"finance_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryTransactionRepository()
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Store:        store,
		StoreBackend: config.BackendMemory,
		Transactions: service.NewTransactionService(store, service.NewTransactionValidator()),
		Resolver:     service.NewIdentityResolver(),
		RateLimiter:  middleware.NewRateLimiter(nil),
	}, httpapi.RouteConfig{
		Version:       "test",
		Auth:          config.AuthConfig{TrustedHeader: "X-Amzn-Oidc-Data", CookieNames: []string{"session-token"}},
		APIRateLimit:  1000,
		APIRateWindow: time.Minute,
	})
	return &testServer{t: t, engine: r}
}

func token(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":              sub,
		"cognito:username": sub + "-name",
		"exp":              time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// do sends body (marshalled unless it is a string) as user and returns the recorder.
func (s *testServer) do(user, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			s.t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Amzn-Oidc-Data", token(s.t, user))
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func skPath(sk string) string {
	return "/api/transactions/" + url.PathEscape(sk)
}

var salary = map[string]any{
	"date":        "2024-03-15",
	"kind":        "income",
	"direction":   "credit",
	"mode":        "salary",
	"amountCents": 500000,
	"currency":    "EUR",
}

func TestCreateAndFilterByMonth(t *testing.T) {
	s := newTestServer(t)

	w := s.do("u1", http.MethodPost, "/api/transactions", salary)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", w.Code, w.Body)
	}
	created := decode[domain.Transaction](t, w)
	if created.YearMonth != "2024-03" || created.UserID != "u1" {
		t.Fatalf("unexpected record %+v", created)
	}

	w = s.do("u1", http.MethodGet, "/api/transactions?month=2024-03", nil)
	items := decode[[]domain.Transaction](t, w)
	if w.Code != http.StatusOK || len(items) != 1 || items[0].SK != created.SK {
		t.Fatalf("march listing = %d %s", w.Code, w.Body)
	}

	w = s.do("u1", http.MethodGet, "/api/transactions?month=2024-04", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("april listing = %d %s; want empty array", w.Code, w.Body)
	}
}

func TestCreateRejections(t *testing.T) {
	s := newTestServer(t)

	w := s.do("u1", http.MethodPost, "/api/transactions", map[string]any{
		"date": "2024-03-01", "kind": "expense", "direction": "credit", "mode": "cash", "amountCents": 100,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["error"] != "domain rule violation" || body["details"] != "expense must be debit" {
		t.Fatalf("unexpected body %v", body)
	}

	bad := map[string]any{}
	for k, v := range salary {
		bad[k] = v
	}
	bad["amountCents"] = 0
	w = s.do("u1", http.MethodPost, "/api/transactions", bad)
	if w.Code != http.StatusBadRequest || decode[map[string]any](t, w)["error"] != "validation error" {
		t.Fatalf("zero amount = %d %s", w.Code, w.Body)
	}

	w = s.do("u1", http.MethodPost, "/api/transactions", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", w.Code)
	}

	w = s.do("u1", http.MethodGet, "/api/transactions", nil)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("rejected creates were stored: %s", w.Body)
	}
}

func TestUnauthorized(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/transactions"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodGet, "/api/transactions/T%23x"},
		{http.MethodDelete, "/api/transactions/T%23x"},
		{http.MethodGet, "/api/me"},
	} {
		w := s.do("", tc.method, tc.path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d; want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestGetUpdateDeleteLifecycle(t *testing.T) {
	s := newTestServer(t)
	created := decode[domain.Transaction](t, s.do("u1", http.MethodPost, "/api/transactions", salary))
	path := skPath(created.SK)

	w := s.do("u1", http.MethodGet, path, nil)
	if w.Code != http.StatusOK || decode[domain.Transaction](t, w) != created {
		t.Fatalf("get = %d %s", w.Code, w.Body)
	}

	if w := s.do("u2", http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("other user get = %d; want 404", w.Code)
	}

	w = s.do("u1", http.MethodPut, path, map[string]any{"description": "bonus"})
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Fatalf("update = %d %s", w.Code, w.Body)
	}
	got := decode[domain.Transaction](t, s.do("u1", http.MethodGet, path, nil))
	if got.Description != "bonus" || got.AmountCents != created.AmountCents || got.Mode != created.Mode || got.Currency != created.Currency {
		t.Fatalf("after update %+v", got)
	}

	if w := s.do("u1", http.MethodPut, path, "{}"); w.Code != http.StatusOK {
		t.Fatalf("empty update = %d", w.Code)
	}
	if w := s.do("u1", http.MethodPut, path, ""); w.Code != http.StatusOK {
		t.Fatalf("bodiless update = %d", w.Code)
	}
	if w := s.do("u1", http.MethodPut, path, map[string]any{"kind": "expense"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field update = %d; want 400", w.Code)
	}
	if w := s.do("u1", http.MethodPut, path, map[string]any{"amountCents": -1}); w.Code != http.StatusBadRequest {
		t.Fatalf("negative amount update = %d; want 400", w.Code)
	}
	if w := s.do("u1", http.MethodPut, skPath("T#2020-01-01T12:00:00.000Z#nope"), map[string]any{"description": "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("update of missing record = %d; want 404", w.Code)
	}

	if w := s.do("u1", http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	w = s.do("u1", http.MethodGet, path, nil)
	if w.Code != http.StatusNotFound || decode[map[string]string](t, w)["error"] != "Not found" {
		t.Fatalf("get after delete = %d %s", w.Code, w.Body)
	}
	if w := s.do("u1", http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Fatalf("repeated delete = %d; want 200", w.Code)
	}
}

func TestListPaginationHeader(t *testing.T) {
	s := newTestServer(t)
	for _, date := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		body := map[string]any{"date": date, "kind": "expense", "direction": "debit", "mode": "credit_card", "amountCents": 100}
		if w := s.do("u1", http.MethodPost, "/api/transactions", body); w.Code != http.StatusCreated {
			t.Fatalf("create %s = %d %s", date, w.Code, w.Body)
		}
	}

	w := s.do("u1", http.MethodGet, "/api/transactions?direction=debit&limit=2", nil)
	items := decode[[]domain.Transaction](t, w)
	cursor := w.Header().Get("X-Next-Cursor")
	if len(items) != 2 || items[0].Date != "2024-03-03" || cursor == "" {
		t.Fatalf("first page %d items, cursor %q", len(items), cursor)
	}

	w = s.do("u1", http.MethodGet, "/api/transactions?direction=debit&limit=2&cursor="+url.QueryEscape(cursor), nil)
	items = decode[[]domain.Transaction](t, w)
	if len(items) != 1 || items[0].Date != "2024-03-01" || w.Header().Get("X-Next-Cursor") != "" {
		t.Fatalf("second page %+v", items)
	}

	for _, q := range []string{"limit=abc", "month=March", "direction=up", "mode=cheque", "cursor=zzz"} {
		if w := s.do("u1", http.MethodGet, "/api/transactions?"+q, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("?%s = %d; want 400", q, w.Code)
		}
	}
}

func TestSummaryAndMe(t *testing.T) {
	s := newTestServer(t)
	s.do("u1", http.MethodPost, "/api/transactions", salary)
	s.do("u1", http.MethodPost, "/api/transactions", map[string]any{
		"date": "2024-03-20", "kind": "expense", "direction": "debit", "mode": "direct_debit", "amountCents": 1200,
	})

	w := s.do("u1", http.MethodGet, "/api/transactions/summary?month=2024-03", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary = %d %s", w.Code, w.Body)
	}
	sum := decode[service.Summary](t, w)
	eur := sum.Currencies["EUR"]
	if sum.Count != 2 || eur == nil || eur.BalanceCents != 498800 || eur.Balance != "4988.00" {
		t.Fatalf("unexpected summary %s", w.Body)
	}

	w = s.do("u1", http.MethodGet, "/api/me", nil)
	me := decode[map[string]string](t, w)
	if me["userId"] != "u1" || me["username"] != "u1-name" {
		t.Fatalf("me = %v", me)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		if w := s.do("", http.MethodGet, path, nil); w.Code != http.StatusOK {
			t.Fatalf("%s = %d", path, w.Code)
		}
	}
}
