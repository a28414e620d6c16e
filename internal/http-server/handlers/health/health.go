// Package health exposes the liveness endpoint.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/depanneo/backend/internal/http-server/response"
)

// New returns the health handler.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"status": "ok",
		}))
	}
}
