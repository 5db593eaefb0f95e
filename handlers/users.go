package handlers

import (
	"log/slog"
	"net/http"

	"github.com/MustafaTarek77/Order-Management-System/pkg/ctxmanage"
	"github.com/MustafaTarek77/Order-Management-System/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetOrderHistory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	userId := c.Param("userId")

	history, err := h.uConf.GetOrderHistory(c.Request.Context(), userId)
	if err != nil {
		slog.Error("error fetching order history", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.UserID, userId))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
