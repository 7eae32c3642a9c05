package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"finance_webapp/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Exercises the transaction API of a running server end to end:
// create, list by month, update, get, delete.
func main() {
	base := flag.String("url", "http://127.0.0.1:8080", "server base url")
	header := flag.String("header", "X-Amzn-Oidc-Data", "identity header the server trusts")
	user := flag.String("user", "smoke-user", "subject to act as")
	flag.Parse()

	logger.Init("info", false)

	// the server trusts the upstream proxy, so the signing key is irrelevant
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      *user,
		"username": "smoke",
		"exp":      time.Now().Add(10 * time.Minute).Unix(),
	}).SignedString([]byte("smoke"))
	if err != nil {
		logger.Fatal("sign token", "error", err)
	}

	c := &client{base: *base, header: *header, token: token, http: &http.Client{Timeout: 10 * time.Second}}

	var created struct {
		SK        string `json:"SK"`
		YearMonth string `json:"yearMonth"`
	}
	c.call(http.MethodPost, "/api/transactions", map[string]any{
		"date": "2024-03-15", "kind": "income", "direction": "credit", "mode": "salary",
		"amountCents": 500000, "description": "smoke test",
	}, http.StatusCreated, &created)
	logger.Info("created", "sk", created.SK, "year_month", created.YearMonth)

	var items []map[string]any
	c.call(http.MethodGet, "/api/transactions?month=2024-03", nil, http.StatusOK, &items)
	logger.Info("listed", "count", len(items))

	path := "/api/transactions/" + url.PathEscape(created.SK)
	c.call(http.MethodPut, path, map[string]any{"amountCents": 510000}, http.StatusOK, nil)

	var got map[string]any
	c.call(http.MethodGet, path, nil, http.StatusOK, &got)
	logger.Info("fetched", "amount_cents", got["amountCents"])

	c.call(http.MethodDelete, path, nil, http.StatusOK, nil)
	c.call(http.MethodGet, path, nil, http.StatusNotFound, nil)

	logger.Info("smoke test finished")
}

type client struct {
	base   string
	header string
	token  string
	http   *http.Client
}

func (c *client) call(method, path string, body any, want int, out any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			logger.Fatal("encode body", "error", err)
		}
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		logger.Fatal("build request", "error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.header, c.token)

	res, err := c.http.Do(req)
	if err != nil {
		logger.Fatal("request failed", "method", method, "path", path, "error", err)
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(res.Body)
	if res.StatusCode != want {
		logger.Fatal(fmt.Sprintf("%s %s: got %d, want %d", method, path, res.StatusCode, want), "body", string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			logger.Fatal("decode response", "error", err)
		}
	}
}
