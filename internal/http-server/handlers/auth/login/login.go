// Package login handles credential checks and token issuance.
package login

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

// Loginer verifies credentials and issues tokens.
type Loginer interface {
	Login(ctx context.Context, username, password string) (token, role string, err error)
}

// New returns the login handler.
func New(log *slog.Logger, loginer Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req models.DummyLoginUser
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

		token, role, err := loginer.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			log.Error("login failed", sl.Err(err))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
			return
		}
		log.Info("user logged in", slog.String("username", req.Username))

		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"token": token,
			"role":  role,
		}))
	}
}
