package selectrepairer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/domain/lifecycle"
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SelectResponse(ctx context.Context, actor *models.User, id, responseID string) (*lifecycle.Event, error) {
	args := m.Called(ctx, actor, id, responseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lifecycle.Event), args.Error(1)
}

func TestSelectRepairerHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	actor := &models.User{UID: "client-1", Role: models.RoleClient}
	const responseID = "6f1c2b1e-8a3d-4a4b-9a6e-2a0f3b1c4d5e"

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"response_id":"` + responseID + `"}`,
			setupMock: func(m *MockService) {
				m.On("SelectResponse", mock.Anything, actor, "req-1", responseID).Return(&lifecycle.Event{
					RequestID:  "req-1",
					ResponseID: responseID,
					Action:     "select_repairer",
					From:       models.RequestOpen,
					To:         models.RequestInProgress,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"to":"in_progress"`,
		},
		{
			name:           "response id is not a uuid",
			body:           `{"response_id":"nope"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field ResponseID can contain only uuid`,
		},
		{
			name: "response of another request",
			body: `{"response_id":"` + responseID + `"}`,
			setupMock: func(m *MockService) {
				m.On("SelectResponse", mock.Anything, actor, "req-1", responseID).
					Return(nil, fault.New(fault.InvalidReference, "response does not belong to request"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `does not belong`,
		},
		{
			name: "selection already made",
			body: `{"response_id":"` + responseID + `"}`,
			setupMock: func(m *MockService) {
				m.On("SelectResponse", mock.Anything, actor, "req-1", responseID).
					Return(nil, fault.New(fault.InvalidState, "request is not open"))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `request is not open`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/requests/req-1/select", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "req-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, mware.UserKey, actor)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
