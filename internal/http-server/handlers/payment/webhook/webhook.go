// Package webhook receives payment confirmations from the external
// provider and applies the subscription activation. This service never
// talks to the payment gateway itself; the provider calls here once a
// payment settles.
package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
)

// DummyPaymentEvent is the provider's confirmation payload.
type DummyPaymentEvent struct {
	UserUID string `json:"user_uid" validate:"required,uuid"`
	Plan    string `json:"plan" validate:"required"`
	Months  int    `json:"months" validate:"required,gt=0"`
}

// Activator applies confirmed payments.
type Activator interface {
	Activate(ctx context.Context, userUID, plan string, months int) error
}

// New returns the payment webhook handler. Calls must carry the shared
// secret in the X-Webhook-Secret header.
func New(log *slog.Logger, activator Activator, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payment.webhook.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		got := r.Header.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.Error("webhook secret mismatch")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid webhook secret"))
			return
		}

		var req DummyPaymentEvent
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode webhook body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid webhook payload", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request"))
			return
		}

		if err := activator.Activate(r.Context(), req.UserUID, req.Plan, req.Months); err != nil {
			log.Error("failed to activate subscription", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to activate subscription"))
			return
		}
		log.Info("payment applied", slog.String("user_uid", req.UserUID), slog.String("plan", req.Plan))

		render.JSON(w, r, response.OK())
	}
}
