package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-action-reminder/internal/domain"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/scheduler"
)

// ScheduleRequest is the public surface for creating or replacing a
// reminder. TriggerAtMillis is optional; when omitted the scheduler
// computes the next occurrence itself.
type ScheduleRequest struct {
	RequestID       int     `json:"requestId" binding:"required"`
	TriggerAtMillis int64   `json:"triggerAtMillis"`
	SoundName       string  `json:"soundName"`
	Volume01        float64 `json:"volume01"`
	Title           string  `json:"title"`
	ActionText      string  `json:"actionText"`
	Mode            string  `json:"mode"`
	FixedTime       string  `json:"fixedTime"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	IntervalSeconds int     `json:"intervalSeconds"`
	DurationSound   int     `json:"durationSound"`
}

type ScheduleResponse struct {
	RequestID    int   `json:"requestId"`
	NextAtMillis int64 `json:"nextAtMillis"`
	Scheduled    bool  `json:"scheduled"`
}

// CancelAllRequest names the ids to cancel. An absent or empty list
// cancels every stored reminder.
type CancelAllRequest struct {
	IDs []int `json:"ids"`
}

type StatusResponse struct {
	RequestID    int   `json:"requestId"`
	Scheduled    bool  `json:"scheduled"`
	NextAtMillis int64 `json:"nextAtMillis"`
}

type ReminderHandler struct {
	scheduler *scheduler.Service
}

func NewReminderHandler(schedulerService *scheduler.Service) *ReminderHandler {
	return &ReminderHandler{scheduler: schedulerService}
}

func (h *ReminderHandler) HandleSchedule(c *gin.Context) {
	ctx := c.Request.Context()

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "malformed schedule request",
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action := &domain.Action{
		RequestID:       req.RequestID,
		TriggerAtMillis: req.TriggerAtMillis,
		SoundName:       req.SoundName,
		Volume01:        req.Volume01,
		Title:           req.Title,
		Text:            req.ActionText,
		Mode:            domain.ParseMode(req.Mode),
		FixedTime:       req.FixedTime,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IntervalSeconds: req.IntervalSeconds,
		DurationSound:   req.DurationSound,
	}

	if err := h.scheduler.Schedule(ctx, action); err != nil {
		if errors.Is(err, domain.ErrInvalidRequestID) || errors.Is(err, domain.ErrInvalidInterval) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to schedule reminder",
			slog.Int("request_id", req.RequestID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule reminder"})
		return
	}

	next := h.scheduler.NextAt(ctx, req.RequestID)
	c.JSON(http.StatusOK, ScheduleResponse{
		RequestID:    req.RequestID,
		NextAtMillis: next,
		Scheduled:    next > 0,
	})
}

func (h *ReminderHandler) HandleCancel(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	if err := h.scheduler.Cancel(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to cancel reminder",
			slog.Int("request_id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel reminder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requestId": id, "cancelled": true})
}

func (h *ReminderHandler) HandleCancelAll(c *gin.Context) {
	ctx := c.Request.Context()

	var req CancelAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.WarnContext(ctx, "malformed cancel request",
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	count, err := h.scheduler.CancelAll(ctx, req.IDs)
	if err != nil {
		slog.ErrorContext(ctx, "failed to cancel all reminders",
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancelled": count})
}

func (h *ReminderHandler) HandleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		RequestID:    id,
		Scheduled:    h.scheduler.IsScheduled(ctx, id),
		NextAtMillis: h.scheduler.NextAt(ctx, id),
	})
}
