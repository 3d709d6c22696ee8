package report

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medlama-backend/internal/chat"
	"medlama-backend/internal/httpapi"
	"medlama-backend/internal/platform/logger"
	"medlama-backend/internal/user"
)

type Handler struct {
	svc   *Service
	chats *chat.Service
	log   *logger.Logger
}

func NewHandler(svc *Service, chats *chat.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, chats: chats, log: log}
}

// ExportConversation streams the conversation transcript as a PDF.
func (h *Handler) ExportConversation(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	conv, err := h.chats.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	pdfData, err := h.svc.Transcript(conv)
	if err != nil {
		h.log.Error("transcript export failed", "conversation_id", conv.ID.Hex(), "error", err)
		httpapi.WriteError(w, h.log, httpapi.Internal("failed to export conversation"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "conversation_"+conv.ID.Hex()+".pdf"))
	_, _ = w.Write(pdfData)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/conversations/{id}/export", h.ExportConversation)
}
