package handlers

import (
	"errors"
	"net/http"

	"finance_webapp/internal/domain"
	"finance_webapp/internal/http/middleware"
	"finance_webapp/internal/logger"
	"finance_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Transactions *service.TransactionService
}

func NewHandler(transactions *service.TransactionService) *Handler {
	return &Handler{Transactions: transactions}
}

// getUserID reads the id stored by middleware.RequireUser
func getUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUserID)
	return uid, uid != ""
}

// writeError maps service errors onto the {error, details} envelope.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": err.Error()})
	case errors.Is(err, domain.ErrDomainRule):
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain rule violation", "details": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
