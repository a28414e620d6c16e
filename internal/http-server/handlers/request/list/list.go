// Package list serves the browse listing and the client's own
// requests, each projected per viewer.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/depanneo/backend/internal/domain/visibility"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

// Lister serves projected request listings.
type Lister interface {
	ListActive(ctx context.Context, actor *models.User, limit, offset int) ([]visibility.RequestView, error)
	ListForClient(ctx context.Context, actor *models.User, limit, offset int) ([]visibility.RequestView, error)
}

// New returns the public browse-listing handler.
func New(log *slog.Logger, lister Lister) http.HandlerFunc {
	return handler(log, "handlers.request.list.New", func(r *http.Request, limit, offset int) ([]visibility.RequestView, error) {
		return lister.ListActive(r.Context(), mware.CurrentUser(r), limit, offset)
	})
}

// Mine returns the handler listing the acting client's own requests.
func Mine(log *slog.Logger, lister Lister) http.HandlerFunc {
	return handler(log, "handlers.request.list.Mine", func(r *http.Request, limit, offset int) ([]visibility.RequestView, error) {
		return lister.ListForClient(r.Context(), mware.CurrentUser(r), limit, offset)
	})
}

func handler(log *slog.Logger, op string, list func(r *http.Request, limit, offset int) ([]visibility.RequestView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		limit := queryInt(r, "limit", 20)
		offset := queryInt(r, "offset", 0)

		views, err := list(r, limit, offset)
		if err != nil {
			log.Error("failed to list requests", sl.Err(err))
			render.Status(r, response.HTTPStatus(err))
			render.JSON(w, r, response.Error(response.FaultMessage(err)))
			return
		}
		log.Info("listed requests", slog.Int("count", len(views)))

		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"count":    len(views),
			"requests": views,
		}))
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
