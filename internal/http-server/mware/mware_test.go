package mware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/depanneo/backend/internal/lib/jwt"
	"github.com/depanneo/backend/internal/models"
)

type MakerMock struct{ mock.Mock }

func (m *MakerMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

type LoaderMock struct{ mock.Mock }

func (m *LoaderMock) ActingUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func echoUser() (http.Handler, *[]*models.User) {
	var seen []*models.User
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, CurrentUser(r))
		w.WriteHeader(http.StatusOK)
	})
	return h, &seen
}

func TestJWTMiddleware(t *testing.T) {
	claims := &jwt.CustomClaims{UserUID: "uid-1", Username: "paulmartin", Role: models.RoleReparateur}
	account := &models.User{UID: "uid-1", Username: "paulmartin", Role: models.RoleReparateur}

	t.Run("valid token loads the acting user", func(t *testing.T) {
		maker := new(MakerMock)
		loader := new(LoaderMock)
		maker.On("ParseToken", "good-token").Return(claims, nil).Once()
		loader.On("ActingUser", mock.Anything, "uid-1").Return(account, nil).Once()

		next, seen := echoUser()
		handler := JWTMiddleware(maker, loader, newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/requests/mine", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []*models.User{account}, *seen)
		maker.AssertExpectations(t)
		loader.AssertExpectations(t)
	})

	t.Run("missing header", func(t *testing.T) {
		handler := JWTMiddleware(new(MakerMock), new(LoaderMock), newNoopLogger())(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/requests/mine", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "missing or invalid authorization header")
	})

	t.Run("expired token", func(t *testing.T) {
		maker := new(MakerMock)
		maker.On("ParseToken", "stale").Return(nil, errors.New("token is expired")).Once()

		handler := JWTMiddleware(maker, new(LoaderMock), newNoopLogger())(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/requests/mine", nil)
		req.Header.Set("Authorization", "Bearer stale")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or expired token")
	})

	t.Run("token references a deleted account", func(t *testing.T) {
		maker := new(MakerMock)
		loader := new(LoaderMock)
		maker.On("ParseToken", "orphan").Return(claims, nil).Once()
		loader.On("ActingUser", mock.Anything, "uid-1").Return(nil, nil).Once()

		handler := JWTMiddleware(maker, loader, newNoopLogger())(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/requests/mine", nil)
		req.Header.Set("Authorization", "Bearer orphan")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unknown user")
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	claims := &jwt.CustomClaims{UserUID: "uid-1", Username: "paulmartin", Role: models.RoleReparateur}
	account := &models.User{UID: "uid-1", Role: models.RoleReparateur}

	t.Run("anonymous request passes through", func(t *testing.T) {
		next, seen := echoUser()
		handler := OptionalAuthMiddleware(new(MakerMock), new(LoaderMock), newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/requests", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []*models.User{nil}, *seen)
	})

	t.Run("present token is resolved", func(t *testing.T) {
		maker := new(MakerMock)
		loader := new(LoaderMock)
		maker.On("ParseToken", "good-token").Return(claims, nil).Once()
		loader.On("ActingUser", mock.Anything, "uid-1").Return(account, nil).Once()

		next, seen := echoUser()
		handler := OptionalAuthMiddleware(maker, loader, newNoopLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/requests", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []*models.User{account}, *seen)
	})

	t.Run("garbage token is still rejected", func(t *testing.T) {
		maker := new(MakerMock)
		maker.On("ParseToken", "garbage").Return(nil, errors.New("malformed")).Once()

		handler := OptionalAuthMiddleware(maker, new(LoaderMock), newNoopLogger())(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/requests", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
