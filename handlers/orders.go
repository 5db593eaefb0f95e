package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MustafaTarek77/Order-Management-System/internal/store"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/kafka"
	"github.com/MustafaTarek77/Order-Management-System/pkg/ctxmanage"
	"github.com/MustafaTarek77/Order-Management-System/pkg/logkey"

	"github.com/gin-gonic/gin"
)

type CreateOrderRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code" validate:"required"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request CreateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg, ok := h.validateRequest(request, traceId); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	order, err := h.oConf.CreateOrder(c.Request.Context(), request.UserID)
	if err != nil {
		slog.Error("error creating order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.UserID, request.UserID))
		respondError(c, err)
		return
	}

	slog.Info("order created", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String(logkey.UserID, order.UserID),
		slog.Int64("total", order.Total))

	h.publishOrderCreated(order, traceId)

	c.JSON(http.StatusOK, order)
}

// publishOrderCreated emits the order-created event without blocking the
// response; the order is already committed, delivery is best effort.
func (h *Handler) publishOrderCreated(order *store.Order, traceId string) {
	if h.k == nil {
		return
	}
	event := kafka.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		CreatedAt: order.OrderDate,
	}
	go func() {
		jsonData, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal OrderCreatedEvent", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderCreated, []byte(event.OrderID), jsonData); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			return
		}
		slog.Info("order event produced", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, event.OrderID))
	}()
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderId := c.Param("orderId")

	order, err := h.oConf.GetOrder(c.Request.Context(), orderId)
	if err != nil {
		slog.Error("error fetching order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.OrderID, orderId))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderId := c.Param("orderId")

	var request UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg, ok := h.validateRequest(request, traceId); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	order, err := h.oConf.UpdateOrderStatus(c.Request.Context(), orderId, request.Status)
	if err != nil {
		slog.Error("error updating order status", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.OrderID, orderId))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) ApplyCoupon(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderId := c.Param("orderId")

	var request ApplyCouponRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg, ok := h.validateRequest(request, traceId); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	order, err := h.oConf.ApplyCoupon(c.Request.Context(), orderId, request.CouponCode)
	if err != nil {
		slog.Error("error applying coupon", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.OrderID, orderId))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
