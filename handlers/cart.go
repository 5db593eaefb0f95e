package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MustafaTarek77/Order-Management-System/pkg/ctxmanage"
	"github.com/MustafaTarek77/Order-Management-System/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CartRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type UpdateCartRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

type RemoveFromCartRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
}

func (h *Handler) AddToCart(c *gin.Context) {
	// Get the traceId for logging
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request CartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg, ok := h.validateRequest(request, traceId); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	crt, err := h.cConf.AddToCart(c.Request.Context(), request.UserID, request.ProductID, request.Quantity)
	if err != nil {
		slog.Error("error adding product to cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String("product_id", request.ProductID),
			slog.Int("quantity", request.Quantity))
		respondError(c, err)
		return
	}

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId),
		slog.String("product_id", request.ProductID), slog.Int("quantity", request.Quantity),
		slog.String(logkey.UserID, request.UserID))

	c.JSON(http.StatusOK, crt)
}

func (h *Handler) ViewCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	userId := c.Param("userId")

	crt, err := h.cConf.ViewCart(c.Request.Context(), userId)
	if err != nil {
		slog.Error("error fetching cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.UserID, userId))
		respondError(c, err)
		return
	}

	// A user without a cart gets a null body, not an error.
	c.JSON(http.StatusOK, crt)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request UpdateCartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg, ok := h.validateRequest(request, traceId); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	crt, err := h.cConf.UpdateCartItem(c.Request.Context(), request.UserID, request.ProductID, request.Quantity)
	if err != nil {
		slog.Error("error updating cart item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String("product_id", request.ProductID),
			slog.Int("quantity", request.Quantity))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, crt)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request RemoveFromCartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg, ok := h.validateRequest(request, traceId); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	crt, err := h.cConf.RemoveFromCart(c.Request.Context(), request.UserID, request.ProductID)
	if err != nil {
		slog.Error("error removing product from cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String("product_id", request.ProductID))
		respondError(c, err)
		return
	}

	if crt == nil {
		// Last item removed; the cart itself is gone.
		c.JSON(http.StatusOK, gin.H{"message": "cart is empty and has been deleted"})
		return
	}
	c.JSON(http.StatusOK, crt)
}

// validateRequest runs struct validation and turns the first tag failure
// into a client-facing message.
func (h *Handler) validateRequest(request any, traceId string) (string, bool) {
	err := h.validate.Struct(request)
	if err == nil {
		return "", true
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		switch vErr.Tag() {
		case "required":
			return vErr.Field() + " value missing", false
		case "min":
			return vErr.Field() + " value is less than " + vErr.Param(), false
		default:
			return http.StatusText(http.StatusBadRequest), false
		}
	}
	slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
	return http.StatusText(http.StatusBadRequest), false
}
