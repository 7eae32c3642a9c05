package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"finance_webapp/internal/domain"
	"finance_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// HeaderNextCursor carries the cursor of the next page on list responses.
const HeaderNextCursor = "X-Next-Cursor"

// ListTransactions returns the caller's records, newest first.
// Query: month=YYYY-MM | direction=credit|debit | mode=<mode>, limit, cursor.
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	filter, err := listFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.Transactions.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if page.NextCursor != "" {
		c.Header(HeaderNextCursor, page.NextCursor)
	}
	c.JSON(http.StatusOK, page.Items)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req service.CreateTransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": "invalid request: " + err.Error()})
		return
	}

	tx, err := h.Transactions.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tx, err := h.Transactions.Get(c.Request.Context(), userID, c.Param("sk"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// UpdateTransaction applies a partial update. Fields other than description,
// mode, amountCents and currency are rejected.
func (h *Handler) UpdateTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var patch domain.TransactionPatch
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": "invalid request: " + err.Error()})
		return
	}

	if err := h.Transactions.Update(c.Request.Context(), userID, c.Param("sk"), patch); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteTransaction succeeds whether or not the record existed.
func (h *Handler) DeleteTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Transactions.Delete(c.Request.Context(), userID, c.Param("sk")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TransactionSummary totals the records matching the same filters as the list.
func (h *Handler) TransactionSummary(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	filter, err := listFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	sum, err := h.Transactions.Summary(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func listFilter(c *gin.Context) (domain.ListFilter, error) {
	f := domain.ListFilter{
		Month:     c.Query("month"),
		Direction: domain.Direction(c.Query("direction")),
		Mode:      domain.Mode(c.Query("mode")),
		Cursor:    c.Query("cursor"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)
		}
		f.Limit = n
	}
	return f, nil
}
