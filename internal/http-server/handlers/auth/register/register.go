// Package register handles account creation for clients and
// reparateurs.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Registerer creates new accounts.
type Registerer interface {
	Register(ctx context.Context, req models.DummyRegisterUser) (string, error)
}

// New returns the registration handler.
func New(log *slog.Logger, registerer Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req models.DummyRegisterUser
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

		uid, err := registerer.Register(r.Context(), req)
		if err != nil {
			log.Error("failed to register user", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("registered new user", slog.String("uid", uid), slog.String("role", req.Role))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"uid": uid,
		}))
	}
}
