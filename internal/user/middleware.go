package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"medlama-backend/internal/ai"
	"medlama-backend/internal/httpapi"
	"medlama-backend/internal/platform/logger"
)

// HeaderUserID carries the caller's public user identifier. When absent a
// fresh identifier is minted and echoed back so the client can persist it.
const HeaderUserID = "X-User-ID"

type ctxKey struct{}

// FromContext returns the user resolved by EnsureUser.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok
}

// EnsureUser resolves the request's public ID to a user record, creating
// one on first contact, and stores it in the request context.
func EnsureUser(repo Repository, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			publicID := r.Header.Get(HeaderUserID)

			var u *User
			if publicID != "" {
				existing, err := repo.GetByPublicID(r.Context(), publicID)
				switch {
				case err == nil:
					u = existing
				case errors.Is(err, ErrNotFound):
					// fall through to create below
				default:
					httpapi.WriteError(w, log, err)
					return
				}
			} else {
				publicID = uuid.New().String()
			}

			if u == nil {
				u = &User{
					PublicID:      publicID,
					Name:          "Learner",
					LearningLevel: ai.LevelMedicalStudent,
				}
				if err := repo.Create(r.Context(), u); err != nil {
					httpapi.WriteError(w, log, err)
					return
				}
				log.Debug("created user", "public_id", publicID)
			}

			w.Header().Set(HeaderUserID, publicID)
			ctx := context.WithValue(r.Context(), ctxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
