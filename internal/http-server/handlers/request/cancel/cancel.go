// Package cancel handles withdrawal of a repair request by its owner.
package cancel

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

// Canceller withdraws requests.
type Canceller interface {
	Cancel(ctx context.Context, actor *models.User, id, reason string) (*lifecycle.Event, error)
}

// New returns the cancellation handler.
func New(log *slog.Logger, canceller Canceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.request.cancel.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		// The reason is optional; an empty or absent body is fine.
		var req models.DummyCancel
		_ = render.DecodeJSON(r.Body, &req)

		id := chi.URLParam(r, "id")
		event, err := canceller.Cancel(r.Context(), mware.CurrentUser(r), id, req.Reason)
		if err != nil {
			log.Error("failed to cancel request", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("request cancelled", slog.String("id", id))

		render.JSON(w, r, response.StatusOKWithData(event))
	}
}
