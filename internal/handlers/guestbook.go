package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"guestbook-backend/internal/models"
)

type guestbookService interface {
	Submit(ctx context.Context, name, message string) (*models.Entry, error)
	List(ctx context.Context) []models.Entry
}

type GuestbookHandler struct {
	guestbook guestbookService
}

func NewGuestbookHandler(guestbook guestbookService) *GuestbookHandler {
	return &GuestbookHandler{guestbook: guestbook}
}

// List returns every entry, newest first.
func (h *GuestbookHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.guestbook.List(r.Context()))
}

func (h *GuestbookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp(msgInvalidBody))
		return
	}

	entry, err := h.guestbook.Submit(r.Context(), req.Name, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateEntryResponse{Success: true, Entry: entry})
}
