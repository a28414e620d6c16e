// Package read serves the detail view of one repair request, projected
// for the viewer. Anonymous and unentitled viewers receive the record
// with the client contact fields masked.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/depanneo/backend/internal/domain/visibility"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Reader loads projected request views.
type Reader interface {
	Get(ctx context.Context, actor *models.User, id string) (*visibility.RequestView, error)
}

// New returns the request detail handler.
func New(log *slog.Logger, reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.request.read.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		view, err := reader.Get(r.Context(), mware.CurrentUser(r), id)
		if err != nil {
			log.Error("failed to read request", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}

		render.JSON(w, r, response.StatusOKWithData(view))
	}
}
