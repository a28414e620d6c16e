package list

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/depanneo/backend/internal/domain/visibility"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListActive(ctx context.Context, actor *models.User, limit, offset int) ([]visibility.RequestView, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]visibility.RequestView), args.Error(1)
}
func (m *MockService) ListForClient(ctx context.Context, actor *models.User, limit, offset int) ([]visibility.RequestView, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]visibility.RequestView), args.Error(1)
}

func sampleViews() []visibility.RequestView {
	return []visibility.RequestView{
		{RepairRequest: models.RepairRequest{ID: "req-1", Status: models.RequestOpen}},
	}
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	t.Run("defaults limit and offset", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("ListActive", mock.Anything, (*models.User)(nil), 20, 0).Return(sampleViews(), nil)

		handler := New(logger, mockService)

		req := httptest.NewRequest(http.MethodGet, "/requests", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)

		mockService.AssertExpectations(t)
	})

	t.Run("honours pagination query", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("ListActive", mock.Anything, (*models.User)(nil), 5, 10).Return(sampleViews(), nil)

		handler := New(logger, mockService)

		req := httptest.NewRequest(http.MethodGet, "/requests?limit=5&offset=10", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("negative values fall back to defaults", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("ListActive", mock.Anything, (*models.User)(nil), 20, 0).Return(sampleViews(), nil)

		handler := New(logger, mockService)

		req := httptest.NewRequest(http.MethodGet, "/requests?limit=-3&offset=x", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestMineHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	actor := &models.User{UID: "client-1", Role: models.RoleClient}

	mockService := new(MockService)
	mockService.On("ListForClient", mock.Anything, actor, 20, 0).Return(sampleViews(), nil)

	handler := Mine(logger, mockService)

	req := httptest.NewRequest(http.MethodGet, "/requests/mine", nil)
	req = req.WithContext(context.WithValue(req.Context(), mware.UserKey, actor))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requests"`)

	mockService.AssertExpectations(t)
}
