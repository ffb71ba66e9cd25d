package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"storefront-service/internal/orders"
	"storefront-service/internal/shop"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AuditOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req struct {
		OrderID int64  `json:"order_id" validate:"required,gt=0"`
		Action  string `json:"action" validate:"required,oneof=accept reject"`
		Reason  string `json:"reason" validate:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.o.Audit(c.Request.Context(), req.OrderID, req.Action, req.Reason)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}

	slog.Info("order audited", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderNo, o.OrderNo), slog.String("Action", req.Action))

	remark := "Accepted by merchant"
	if req.Action == orders.AuditReject {
		remark = "Rejected by merchant: " + req.Reason
	}
	h.publishStatusChanged(o, remark)

	c.JSON(http.StatusOK, gin.H{"message": "Operation succeeded"})
}

func (h *Handler) CompleteDelivery(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req struct {
		OrderID int64 `json:"order_id" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.o.CompleteDelivery(c.Request.Context(), req.OrderID)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}

	slog.Info("delivery completed", slog.String(logkey.TraceID, traceId), slog.String(logkey.OrderNo, o.OrderNo))
	h.publishStatusChanged(o, "Delivery confirmed by merchant")

	c.JSON(http.StatusOK, gin.H{"message": "Operation succeeded"})
}

func (h *Handler) VerifyPickup(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req struct {
		Code string `json:"code" validate:"required,len=6,numeric"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Code must be 6 digits"})
		return
	}

	result, err := h.o.VerifyPickup(c.Request.Context(), req.Code)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}

	slog.Info("pickup verified", slog.String(logkey.TraceID, traceId), slog.String(logkey.OrderNo, result.OrderNo))
	h.publishStatusChanged(orders.Order{
		OrderNo:    result.OrderNo,
		Status:     orders.StatusCompleted,
		StatusText: orders.StatusCompleted.Text(orders.TypePickup),
	}, "Pickup verified by merchant")

	c.JSON(http.StatusOK, gin.H{"success": true, "order_info": result})
}

func (h *Handler) AdminListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	statusFilter, ok := parseStatusFilter(c, traceId)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		slog.Error("invalid page parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		slog.Error("invalid size parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid size parameter"})
		return
	}

	list, total, err := h.o.AdminList(c.Request.Context(), statusFilter, page, size)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "total": total, "page": page, "size": size})
}

func (h *Handler) AdminOrderDetail(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	orderID, err := strconv.ParseInt(c.Query("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		slog.Error("invalid order_id parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order_id parameter"})
		return
	}

	// Merchant side: no owner restriction.
	o, err := h.o.Detail(c.Request.Context(), "", orderID)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) UpdateShopConfig(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req shop.ConfigUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cfg, err := h.s.UpdateConfig(c.Request.Context(), req)
	if err != nil {
		slog.Error("error updating shop config", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to update shop config"})
		return
	}

	slog.Info("shop config updated", slog.String(logkey.TraceID, traceId))
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated", "config": cfg})
}
