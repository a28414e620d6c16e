// Package selectrepairer handles the client's choice of one response,
// which moves the request to in_progress.
package selectrepairer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/depanneo/backend/internal/domain/lifecycle"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Selector records the selection.
type Selector interface {
	SelectResponse(ctx context.Context, actor *models.User, id, responseID string) (*lifecycle.Event, error)
}

// New returns the selection handler.
func New(log *slog.Logger, selector Selector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.request.selectrepairer.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req models.DummySelect
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request"))
			return
		}

		id := chi.URLParam(r, "id")
		event, err := selector.SelectResponse(r.Context(), mware.CurrentUser(r), id, req.ResponseID)
		if err != nil {
			log.Error("failed to select response", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("response selected", slog.String("id", id), slog.String("response_id", req.ResponseID))

		render.JSON(w, r, response.StatusOKWithData(event))
	}
}
