package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"guestbook-backend/internal/handlers"
	"guestbook-backend/internal/middleware"
	"guestbook-backend/internal/websocket"
)

// New builds the HTTP surface. wsHub may be nil when realtime delivery is disabled.
func New(
	pageHandler *handlers.PageHandler,
	guestbookHandler *handlers.GuestbookHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", pageHandler.Index)

	r.Route("/guestbook", func(r chi.Router) {
		r.Get("/", guestbookHandler.List)
		r.Post("/", guestbookHandler.Create)
	})

	r.Post("/ask", chatHandler.Ask)

	// ──── WebSocket ────
	if wsHub != nil {
		r.Get("/ws", wsHub.HandleWebSocket)
	}

	return r
}
