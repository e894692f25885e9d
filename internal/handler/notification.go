package handler

import (
	"log/slog"
	"net/http"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain/services"
	"docassist/internal/handler/sse"
	"docassist/internal/httputil"
)

// NotificationHandler handles notification reads, read-state toggles, the
// live stream and the manual deadline check
type NotificationHandler struct {
	service    services.NotificationService
	subscriber services.NotificationSubscriber
	sweeper    services.DeadlineSweeper
	sseConfig  *sse.Config
	logger     *slog.Logger
}

// NewNotificationHandler creates a notification handler. subscriber may be nil,
// in which case the stream endpoint answers 503.
func NewNotificationHandler(
	service services.NotificationService,
	subscriber services.NotificationSubscriber,
	sweeper services.DeadlineSweeper,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *NotificationHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &NotificationHandler{
		service:    service,
		subscriber: subscriber,
		sweeper:    sweeper,
		sseConfig:  sseConfig,
		logger:     logger,
	}
}

// ListNotifications returns newest first
// GET /api/notifications?unread=true&limit=
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	limit := QueryInt(r, "limit", config.DefaultNotificationLimit, 1, config.MaxNotificationLimit)
	items, err := h.service.ListNotifications(r.Context(), caller, QueryBool(r, "unread"), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	n, err := h.service.UnreadCount(r.Context(), caller)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"count": n})
}

// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Notification ID")
	if !ok {
		return
	}

	n, err := h.service.MarkRead(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, n)
}

// POST /api/notifications/{id}/unread
func (h *NotificationHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Notification ID")
	if !ok {
		return
	}

	n, err := h.service.MarkUnread(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, n)
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), caller)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// DeadlineCheck runs the deadline sweep for the caller
// POST /api/todos/deadline-check
func (h *NotificationHandler) DeadlineCheck(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	result, err := h.sweeper.Sweep(r.Context(), caller, time.Now())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Stream pushes the caller's new notifications as Server-Sent Events
// GET /api/notifications/stream
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	if h.subscriber == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "live notifications are not configured")
		return
	}

	ctx := r.Context()
	stream, err := h.subscriber.Subscribe(ctx, caller)
	if err != nil {
		h.logger.Error("notification subscribe failed", "user_id", caller.UserID, "error", err)
		httputil.RespondError(w, http.StatusServiceUnavailable, "live notifications unavailable")
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)

	unread, err := h.service.UnreadCount(ctx, caller)
	if err != nil {
		h.logger.Warn("unread count for stream failed", "user_id", caller.UserID, "error", err)
	}
	if err := writer.WriteEvent("ready", map[string]int{"unread": unread}); err != nil {
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	stopped := keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	h.logger.Debug("notification stream opened", "user_id", caller.UserID)
	defer h.logger.Debug("notification stream closed", "user_id", caller.UserID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopped:
			return
		case n, ok := <-stream:
			if !ok {
				return
			}
			if err := writer.WriteEvent("notification", n); err != nil {
				h.logger.Info("client disconnected during event write", "user_id", caller.UserID, "error", err)
				return
			}
		}
	}
}
