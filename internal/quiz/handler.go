package quiz

import (
	"net/http"
	"strconv"

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

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	var in GenerateInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	result, err := h.svc.Generate(r.Context(), u, in)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	var in SubmitInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	result, err := h.svc.Submit(r.Context(), u, in)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	var limit int64 = 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}

	history, err := h.svc.History(r.Context(), u, r.URL.Query().Get("topic"), limit)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, history)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/generate", h.Generate)
	r.Post("/submit", h.Submit)
	r.Get("/history", h.History)
}
