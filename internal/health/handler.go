package health

import (
	"context"
	"net/http"
	"time"

	"medlama-backend/internal/ai"
	"medlama-backend/internal/httpapi"
)

// Pinger reports database reachability. Nil means the in-memory store is
// in use, which is always "connected".
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	aiClient ai.Client
	db       Pinger
}

func NewHandler(aiClient ai.Client, db Pinger) *Handler {
	return &Handler{aiClient: aiClient, db: db}
}

type status struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	AIService string `json:"ai_service"`
	Database  string `json:"database"`
}

// Check reports liveness plus downstream dependency state. Degraded
// downstreams still answer 200 so orchestrators do not kill a serving
// process; both down answers 503.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st := status{Status: "healthy", Service: "medlama", AIService: "available", Database: "connected"}

	if err := h.aiClient.Ping(ctx); err != nil {
		st.AIService = "unavailable"
		st.Status = "degraded"
	}
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			st.Database = "disconnected"
			st.Status = "degraded"
		}
	}

	code := http.StatusOK
	if st.AIService == "unavailable" && st.Database == "disconnected" {
		st.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	httpapi.WriteJSON(w, code, st)
}
