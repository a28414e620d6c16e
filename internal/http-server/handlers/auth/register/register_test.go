package register

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req models.DummyRegisterUser) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "client registration",
			body: `{"email":"marie@example.com","username":"mariedurand","password":"secret-password","role":"client","first_name":"Marie","last_name":"Durand"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(req models.DummyRegisterUser) bool {
					return req.Role == models.RoleClient && req.Username == "mariedurand"
				})).Return("uid-1", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"uid":"uid-1"`,
		},
		{
			name: "reparateur registration",
			body: `{"email":"paul@example.com","username":"paulmartin","password":"secret-password","role":"reparateur","first_name":"Paul","last_name":"Martin","company_name":"Martin SARL"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(req models.DummyRegisterUser) bool {
					return req.Role == models.RoleReparateur && req.CompanyName == "Martin SARL"
				})).Return("uid-2", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "invalid role",
			body:           `{"email":"x@example.com","username":"someone","password":"secret-password","role":"superadmin","first_name":"A","last_name":"B"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Role has an unsupported value`,
		},
		{
			name:           "invalid email",
			body:           `{"email":"not-an-email","username":"someone","password":"secret-password","role":"client","first_name":"A","last_name":"B"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name:           "short password",
			body:           `{"email":"x@example.com","username":"someone","password":"short","role":"client","first_name":"A","last_name":"B"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Password is not valid`,
		},
		{
			name: "duplicate username",
			body: `{"email":"marie@example.com","username":"mariedurand","password":"secret-password","role":"client","first_name":"Marie","last_name":"Durand"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return("", fault.New(fault.Conflict, "username or email already taken"))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `already taken`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
