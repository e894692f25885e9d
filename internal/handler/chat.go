package handler

import (
	"log/slog"
	"net/http"

	llmSvc "docassist/internal/domain/services/llm"
	"docassist/internal/httputil"
)

// ChatHandler handles the assistant conversation
type ChatHandler struct {
	chatService llmSvc.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService llmSvc.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

// ListMessages returns the most recent messages in order
// GET /api/chat/messages?limit=
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), caller, QueryInt(r, "limit", 0, 0, 1000))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, messages)
}

// SendMessage stores the user message and returns it with the assistant reply
// POST /api/chat/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var req llmSvc.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exchange, err := h.chatService.SendMessage(r.Context(), caller, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, exchange)
}

// ClearHistory deletes the caller's conversation
// DELETE /api/chat/messages
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	deleted, err := h.chatService.ClearHistory(r.Context(), caller)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
