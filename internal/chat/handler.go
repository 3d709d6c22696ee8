package chat

import (
	"encoding/json"
	"errors"
	"fmt"
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

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	var in SendMessageInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	result, err := h.svc.SendMessage(r.Context(), u, in)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	limit := queryInt(r, "limit", 50)
	skip := queryInt(r, "skip", 0)

	summaries, total, err := h.svc.List(r.Context(), u, limit, skip)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": summaries,
		"total":         total,
	})
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	conv, err := h.svc.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, conv)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	if err := h.svc.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "conversation deleted successfully",
	})
}

// GenerateVisual returns an annotated ASCII diagram for a topic.
func (h *Handler) GenerateVisual(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Unauthorized("user identity required"))
		return
	}

	var in struct {
		Topic string `json:"topic"`
	}
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	result, err := h.svc.Visual(r.Context(), u, in.Topic)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, result)
}

// StreamMessage serves the chat flow as a server-sent event stream. All
// failures after the headers go out are delivered as error events on the
// stream itself.
func (h *Handler) StreamMessage(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpapi.WriteError(w, h.log, httpapi.Internal("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	send := func(ev StreamEvent) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	u, ok := user.FromContext(r.Context())
	if !ok {
		_ = send(StreamEvent{Type: EventError, Message: "user identity required"})
		return
	}

	var in SendMessageInput
	if err := httpapi.DecodeJSON(r, &in); err != nil {
		h.sendErrorEvent(send, err)
		return
	}

	if err := h.svc.StreamMessage(r.Context(), u, in, send); err != nil {
		h.sendErrorEvent(send, err)
	}
}

func (h *Handler) sendErrorEvent(send func(StreamEvent) error, err error) {
	var appErr *httpapi.AppError
	if !errors.As(err, &appErr) {
		h.log.Error("unexpected streaming error", "error", err)
		appErr = httpapi.Internal("an unexpected error occurred")
	}
	_ = send(StreamEvent{Type: EventError, Message: appErr.Message})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/message", h.SendMessage)
	r.Post("/visual", h.GenerateVisual)
	r.Get("/conversations", h.ListConversations)
	r.Get("/conversations/{id}", h.GetConversation)
	r.Delete("/conversations/{id}", h.DeleteConversation)
}

// RegisterStreamRoutes mounts the streaming variant of the chat endpoint.
func RegisterStreamRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.StreamMessage)
}

func queryInt(r *http.Request, key string, def int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
