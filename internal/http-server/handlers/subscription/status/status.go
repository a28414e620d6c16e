// Package status reports the acting reparateur's effective
// subscription state.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
)

// StatusReader resolves the effective subscription status for a user.
type StatusReader interface {
	Status(ctx context.Context, userUID string) (string, error)
}

// New returns the subscription status handler.
func New(log *slog.Logger, reader StatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.subscription.status.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := mware.CurrentUser(r)
		if user == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("authentication required"))
			return
		}

		status, err := reader.Status(r.Context(), user.UID)
		if err != nil {
			log.Error("failed to read subscription status", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"status": status,
		}))
	}
}
