package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"guestbook-backend/internal/models"
)

//go:embed templates/index.html
var templateFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

type PageHandler struct {
	guestbook guestbookService
	realtime  bool
}

func NewPageHandler(guestbook guestbookService, realtime bool) *PageHandler {
	return &PageHandler{guestbook: guestbook, realtime: realtime}
}

type indexData struct {
	Entries  []models.Entry
	Realtime bool
}

// Index renders the page with the guestbook as it is at load time.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Entries:  h.guestbook.List(r.Context()),
		Realtime: h.realtime,
	}

	var buf bytes.Buffer
	if err := indexTemplate.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.Printf("Failed to render index page: %v", err)
		http.Error(w, "HTML 페이지를 로드하는 중 오류가 발생했습니다.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
