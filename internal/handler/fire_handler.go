package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-action-reminder/internal/infra/waketimer"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/fire"
)

// FireHandler receives wake-up callbacks from the external tasks
// service and forwards them to the dedupe handler.
type FireHandler struct {
	fireHandler *fire.Handler
}

func NewFireHandler(fireHandler *fire.Handler) *FireHandler {
	return &FireHandler{fireHandler: fireHandler}
}

func (h *FireHandler) HandleFire(c *gin.Context) {
	ctx := c.Request.Context()

	var payload waketimer.FirePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		slog.WarnContext(ctx, "malformed fire payload",
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	slog.InfoContext(ctx, "handling fire callback",
		slog.Int("request_id", payload.RequestID),
		slog.Int64("trigger_at", payload.TriggerAtMillis),
	)

	if err := h.fireHandler.HandleFire(ctx, payload.RequestID); err != nil {
		slog.ErrorContext(ctx, "failed to handle fire",
			slog.Int("request_id", payload.RequestID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process fire"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
