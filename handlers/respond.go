package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront-service/internal/auth"
	"storefront-service/internal/orders"
	"storefront-service/internal/products"
	"storefront-service/internal/users"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// claimsOrAbort extracts the authenticated claims; it aborts with 401 when
// the middleware chain did not run.
func claimsOrAbort(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		traceId := ctxmanage.GetTraceIdOfRequest(c)
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return auth.Claims{}, false
	}
	return claims, true
}

// abortDomainError maps the order-engine error taxonomy onto HTTP responses.
// Anything outside the taxonomy is logged and answered with a generic 500 so
// internals never leak to the caller.
func abortDomainError(c *gin.Context, traceId string, err error) {
	var stockErr *products.InsufficientStockError
	var minErr *orders.BelowMinOrderError

	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, orders.ErrInvalidPickupCode):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Invalid pickup code"})
	case errors.Is(err, orders.ErrAlreadyVerified):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Order already verified"})
	case errors.Is(err, orders.ErrInvalidState):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Order status does not permit this operation"})
	case errors.As(err, &stockErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":      "Insufficient stock",
			"product_id": stockErr.ProductID,
			"product":    stockErr.ProductName,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &minErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": minErr.Error()})
	case errors.Is(err, products.ErrProductNotFound):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
	case errors.Is(err, orders.ErrProductOffShelf):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product is off shelves"})
	case errors.Is(err, users.ErrAddressNotFound):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
	case errors.Is(err, orders.ErrAddressRequired):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Address is required for delivery orders"})
	case errors.Is(err, orders.ErrRejectReasonRequired):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Reject reason is required"})
	case errors.Is(err, orders.ErrShopClosed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Shop is currently closed"})
	case errors.Is(err, orders.ErrEmptyOrder):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one item"})
	default:
		slog.Error("unexpected error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
