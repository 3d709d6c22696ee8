package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medlama-backend/internal/httpapi"
	"medlama-backend/internal/platform/logger"
	"medlama-backend/internal/user"
)

type Handler struct {
	svc *Service
	log *logger.Logger
}

func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	report, err := h.svc.Report(r.Context(), u)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, report)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/analytics", h.GetAnalytics)
}
