package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"guestbook-backend/internal/models"
	"guestbook-backend/internal/services"
)

const (
	msgInvalidBody = "잘못된 요청 형식이옵니다."
	msgInternal    = "서버에 문제가 생겼사옵니다."
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

// handleServiceError maps service errors onto status codes and persona messages.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		storeErr      *services.StoreError
		chatReqErr    *services.ChatRequestError
		upstreamErr   *services.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResp(validationErr.Message))
	case errors.As(err, &chatReqErr):
		writeJSON(w, http.StatusBadRequest, errorResp(chatReqErr.Message))
	case errors.As(err, &storeErr):
		writeJSON(w, http.StatusInternalServerError, errorResp(storeErr.Message()))
	case errors.As(err, &upstreamErr):
		writeJSON(w, http.StatusInternalServerError, errorResp(upstreamErr.Message()))
	default:
		log.Printf("Unhandled error on %s %s [%s]: %v", r.Method, r.URL.Path, r.Header.Get("X-Request-ID"), err)
		writeJSON(w, http.StatusInternalServerError, errorResp(msgInternal))
	}
}
