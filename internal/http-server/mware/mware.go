// Package mware contains the HTTP middleware: JWT authentication,
// acting-user loading and rate limiting. The acting user is loaded
// fresh from storage on every request so entitlement checks see the
// current subscription state, not what the token was minted with.
package mware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/depanneo/backend/internal/http-server/response"
	"github.com/depanneo/backend/internal/lib/jwt"
	"github.com/depanneo/backend/internal/lib/sl"
	"github.com/depanneo/backend/internal/models"
)

type ctxKey string

// UserKey is the context key under which the acting user is stored.
// The value is *models.User; it is absent for anonymous requests.
const UserKey ctxKey = "user"

// JWTMaker validates access tokens.
type JWTMaker interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// UserLoader resolves token claims to a full account record.
type UserLoader interface {
	ActingUser(ctx context.Context, userUID string) (*models.User, error)
}

// CurrentUser returns the acting user from the request context, or nil
// for anonymous requests.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserKey).(*models.User)
	return user
}

// JWTMiddleware requires a valid bearer token and puts the freshly
// loaded acting user into the request context.
func JWTMiddleware(jwtMaker JWTMaker, users UserLoader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := resolveUser(w, r, jwtMaker, users, log, true)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware loads the acting user when a bearer token is
// present and lets anonymous requests through. Read endpoints use it:
// anonymous viewers get the masked projection instead of a 401.
func OptionalAuthMiddleware(jwtMaker JWTMaker, users UserLoader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.OptionalAuthMiddleware"

			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := resolveUser(w, r, jwtMaker, users, log, false)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(w http.ResponseWriter, r *http.Request, jwtMaker JWTMaker, users UserLoader, log *slog.Logger, required bool) (*models.User, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("missing or invalid authorization header")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return nil, false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := jwtMaker.ParseToken(tokenStr)
	if err != nil {
		log.Error("invalid or expired token", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return nil, false
	}

	user, err := users.ActingUser(r.Context(), claims.UserUID)
	if err != nil {
		log.Error("failed to load acting user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return nil, false
	}
	if user == nil {
		if !required {
			return nil, true
		}
		log.Error("token references unknown user", slog.String("user_uid", claims.UserUID))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unknown user"))
		return nil, false
	}
	return user, true
}

var limiter = rate.NewLimiter(10, 30)

// RateLimitMiddleware rejects requests above the global rate budget.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
