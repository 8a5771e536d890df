package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"guestbook-backend/internal/models"
)

type chatService interface {
	Ask(ctx context.Context, history []models.ChatMessage) (string, error)
}

type ChatHandler struct {
	chat chatService
}

func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(msgInvalidBody))
		return
	}

	answer, err := h.chat.Ask(r.Context(), req.History)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AskResponse{Answer: answer})
}
