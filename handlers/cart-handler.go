package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront-service/internal/products"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		ProductID int64 `json:"product_id" validate:"required,gt=0"`
		Quantity  int   `json:"quantity" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("invalid product ID or quantity", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID and quantity must be valid"})
		return
	}

	product, err := h.p.GetProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			slog.Error("product not found", slog.String(logkey.TraceID, traceId), slog.Int64("ProductID", req.ProductID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		slog.Error("error fetching product", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch product"})
		return
	}
	if !product.OnShelf() {
		slog.Error("product off shelves", slog.String(logkey.TraceID, traceId), slog.Int64("ProductID", req.ProductID))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product is off shelves"})
		return
	}
	if req.Quantity > product.Stock {
		slog.Error("insufficient stock", slog.String(logkey.TraceID, traceId),
			slog.Int64("ProductID", req.ProductID), slog.Int("Requested", req.Quantity), slog.Int("Available", product.Stock))
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Insufficient stock available"})
		return
	}

	err = h.c.AddItem(c.Request.Context(), claims.Subject, req.ProductID, req.Quantity, product.Stock)
	if err != nil {
		slog.Error("error adding product to cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.Int64("ProductID", req.ProductID), slog.Int("Quantity", req.Quantity))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to add product to cart"})
		return
	}

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId),
		slog.Int64("ProductID", req.ProductID), slog.Int("Quantity", req.Quantity), slog.String(logkey.UserID, claims.Subject))

	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart successfully"})
}

func (h *Handler) GetActiveCartItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	cartResponse, err := h.c.Items(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching active cart items", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.UserID, claims.Subject))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": cartResponse.Items})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		ProductID int64 `json:"product_id" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("invalid product ID", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product ID must be valid"})
		return
	}

	if err := h.c.RemoveItem(c.Request.Context(), claims.Subject, req.ProductID); err != nil {
		slog.Error("error removing cart item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.Int64("ProductID", req.ProductID))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart"})
}
