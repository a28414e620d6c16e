package respond

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
	"github.com/depanneo/backend/internal/http-server/mware"
	"github.com/depanneo/backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Respond(ctx context.Context, actor *models.User, id string, proposal models.DummyRespond) (*models.Response, error) {
	args := m.Called(ctx, actor, id, proposal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func TestRespondHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	actor := &models.User{UID: "rep-1", Role: models.RoleReparateur}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"message":"Je peux passer demain matin","price":120,"estimated_time":"2h"}`,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, actor, "req-1", mock.MatchedBy(func(p models.DummyRespond) bool {
					return p.Message == "Je peux passer demain matin" && p.Price != nil && *p.Price == 120
				})).Return(&models.Response{
					ID:           "resp-1",
					RequestID:    "req-1",
					ReparateurID: "rep-1",
					Status:       models.ResponsePending,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"pending"`,
		},
		{
			name:           "missing message",
			body:           `{"price":120}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Message is a required field`,
		},
		{
			name:           "malformed body",
			body:           `{not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode request`,
		},
		{
			name: "duplicate response",
			body: `{"message":"encore moi"}`,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, actor, "req-1", mock.Anything).
					Return(nil, fault.New(fault.Conflict, "reparateur already responded to this request"))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `already responded`,
		},
		{
			name: "request not open",
			body: `{"message":"trop tard"}`,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, actor, "req-1", mock.Anything).
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

			req := httptest.NewRequest(http.MethodPost, "/requests/req-1/responses", strings.NewReader(tt.body))
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
