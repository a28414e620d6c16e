// Package complete handles marking an in-progress repair request done.
package complete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/depanneo/backend/internal/domain/lifecycle"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Completer finishes requests.
type Completer interface {
	Complete(ctx context.Context, actor *models.User, id string) (*lifecycle.Event, error)
}

// New returns the completion handler.
func New(log *slog.Logger, completer Completer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.request.complete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		event, err := completer.Complete(r.Context(), mware.CurrentUser(r), id)
		if err != nil {
			log.Error("failed to complete request", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("request completed", slog.String("id", id))

		render.JSON(w, r, response.StatusOKWithData(event))
	}
}
