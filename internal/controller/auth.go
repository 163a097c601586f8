package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
)

// UserHeader carries the authenticated user id, set by the gateway in front
// of this service.
const UserHeader = "X-User-ID"

type ctxKey struct{}

type UserLookup interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// Authenticate resolves the caller and rejects unknown or blocked users.
func Authenticate(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.Atoi(r.Header.Get(UserHeader))
			if err != nil || id <= 0 {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := users.GetByID(r.Context(), id)
			if err != nil {
				var notFound *appErrors.ErrUserNotFound
				if errors.As(err, &notFound) {
					writeError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				log.Error().Err(err).Int("user_id", id).Msg("failed to load user")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !user.IsActive {
				writeError(w, http.StatusForbidden, "account is blocked")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user)))
		})
	}
}

func WithActor(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func ActorFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(ctxKey{}).(*model.User)
	return u
}
