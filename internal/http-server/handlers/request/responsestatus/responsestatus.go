// Package responsestatus handles the response sub-status workflow:
// accept, confirm, start, reject and complete moves on one response.
package responsestatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/depanneo/backend/internal/domain/entitlement"
	"github.com/depanneo/backend/internal/domain/lifecycle"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// DummyAdvance carries the requested sub-status action.
type DummyAdvance struct {
	Action string `json:"action" validate:"required,oneof=accept confirm start reject complete"`
}

var actions = map[string]entitlement.Action{
	"accept":   entitlement.ActionAcceptResponse,
	"confirm":  entitlement.ActionConfirmResponse,
	"start":    entitlement.ActionStartResponse,
	"reject":   entitlement.ActionRejectResponse,
	"complete": entitlement.ActionCompleteResponse,
}

// Advancer applies sub-status actions.
type Advancer interface {
	AdvanceResponse(ctx context.Context, actor *models.User, id, responseID string, action entitlement.Action) (*lifecycle.Event, error)
}

// New returns the sub-status handler.
func New(log *slog.Logger, advancer Advancer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.request.responsestatus.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req DummyAdvance
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
		responseID := chi.URLParam(r, "responseID")
		event, err := advancer.AdvanceResponse(r.Context(), mware.CurrentUser(r), id, responseID, actions[req.Action])
		if err != nil {
			log.Error("failed to advance response", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("response advanced",
			slog.String("id", id),
			slog.String("response_id", responseID),
			slog.String("to", event.To))

		render.JSON(w, r, response.StatusOKWithData(event))
	}
}
