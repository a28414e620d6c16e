// Package create handles posting a new repair request.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Creater posts repair requests.
type Creater interface {
	Create(ctx context.Context, client *models.User, req models.DummyCreateRequest) (*models.RepairRequest, error)
}

// New returns the request creation handler.
func New(log *slog.Logger, creater Creater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.request.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req models.DummyCreateRequest
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

		record, err := creater.Create(r.Context(), mware.CurrentUser(r), req)
		if err != nil {
			log.Error("failed to create repair request", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("created repair request", slog.String("id", record.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.StatusOKWithData(record))
	}
}
