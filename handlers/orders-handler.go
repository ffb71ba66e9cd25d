package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/orders"
	"storefront-service/internal/stores/kafka"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) PreviewOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	if _, ok := claimsOrAbort(c); !ok {
		return
	}

	var req orders.PreviewRequest
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

	resp, err := h.o.Preview(c.Request.Context(), req)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	var req orders.CreateRequest
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

	resp, err := h.o.Create(c.Request.Context(), claims.Subject, req)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}

	slog.Info("order created", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderNo, resp.OrderNo), slog.String(logkey.UserID, claims.Subject))

	if h.k != nil {
		go func(resp orders.CreateResponse, userID string, dt orders.DeliveryType) {
			event := kafka.OrderPlacedEvent{
				OrderNo:      resp.OrderNo,
				UserID:       userID,
				DeliveryType: string(dt),
				CreatedAt:    time.Now().UTC(),
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("failed to marshal order placed event", slog.String(logkey.ERROR, err.Error()))
				return
			}
			if err := h.k.ProduceMessage(kafka.TopicOrderPlaced, []byte(resp.OrderNo), data); err != nil {
				slog.Error("failed to produce order placed event", slog.String(logkey.ERROR, err.Error()))
			}
		}(resp, claims.Subject, req.DeliveryType)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		OrderID int64  `json:"order_id" validate:"required,gt=0"`
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

	o, err := h.o.Cancel(c.Request.Context(), claims.Subject, req.OrderID, req.Reason)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}

	slog.Info("order cancelled", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderNo, o.OrderNo), slog.String(logkey.UserID, claims.Subject))
	h.publishStatusChanged(o, "Cancelled by customer")

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	statusFilter, ok := parseStatusFilter(c, traceId)
	if !ok {
		return
	}

	list, err := h.o.List(c.Request.Context(), claims.Subject, statusFilter)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) OrderDetail(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(c.Query("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		slog.Error("invalid order_id parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order_id parameter"})
		return
	}

	o, err := h.o.Detail(c.Request.Context(), claims.Subject, orderID)
	if err != nil {
		abortDomainError(c, traceId, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// parseStatusFilter reads the optional ?status= query. Absent means all.
func parseStatusFilter(c *gin.Context, traceId string) (*orders.Status, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Error("invalid status parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status parameter"})
		return nil, false
	}
	s := orders.Status(v)
	if !s.Valid() {
		slog.Error("unknown status value", slog.String(logkey.TraceID, traceId), slog.Int("Status", v))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unknown status value"})
		return nil, false
	}
	return &s, true
}

// publishStatusChanged fans the transition out to Kafka. Publishing is
// best-effort and never blocks the response.
func (h *Handler) publishStatusChanged(o orders.Order, remark string) {
	if h.k == nil {
		return
	}
	go func() {
		event := kafka.OrderStatusChangedEvent{
			OrderNo:    o.OrderNo,
			Status:     int(o.Status),
			StatusText: o.StatusText,
			Remark:     remark,
			ChangedAt:  time.Now().UTC(),
		}
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal status changed event", slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderStatusChanged, []byte(o.OrderNo), data); err != nil {
			slog.Error("failed to produce status changed event", slog.String(logkey.ERROR, err.Error()))
		}
	}()
}
