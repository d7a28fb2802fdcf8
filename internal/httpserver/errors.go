package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	accountsvc "storefront/internal/service/account"
	paymentsvc "storefront/internal/service/payment"
)

// fail maps service errors to responses. Validation failures echo input back
// so the client can redisplay what was submitted.
func (a *api) fail(c *gin.Context, err error, input any) {
	var (
		ve *domain.ValidationError
		se *domain.InsufficientStockError
		te *domain.InvalidTransitionError
		ge *paymentsvc.GatewayError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields, "input": input})
	case errors.As(err, &se):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock", "items": se.Items, "input": input})
	case errors.As(err, &te):
		c.JSON(http.StatusConflict, gin.H{"error": te.Error(), "currentStatus": te.Current})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, accountsvc.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCartChanged), errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &ge):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway " + string(ge.Kind)})
	default:
		a.logger.Printf("http: %s %s err=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
