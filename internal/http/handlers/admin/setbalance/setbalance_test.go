package setbalance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	adminservice "github.com/magabrotheeeer/vpn-miniapp/internal/services/admin"
)

// Мок сервиса установки баланса
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SetBalance(ctx context.Context, targetTgID int64, balance float64) error {
	return m.Called(ctx, targetTgID, balance).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func floatPtr(v float64) *float64 { return &v }

func TestSetBalanceHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockCall       bool
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "valid request",
			requestBody:    Request{TargetUserID: 42, Balance: floatPtr(200.5)},
			mockCall:       true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "explicit zero balance is valid",
			requestBody:    map[string]any{"target_user_id": 42, "balance": 0},
			mockCall:       true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "missing balance fails validation",
			requestBody:    map[string]any{"target_user_id": 42},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Balance is a required field",
		},
		{
			name:           "unknown user gets 404",
			requestBody:    Request{TargetUserID: 99, Balance: floatPtr(10)},
			mockCall:       true,
			mockErr:        adminservice.ErrUserNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user not found",
		},
		{
			name:           "storage error",
			requestBody:    Request{TargetUserID: 42, Balance: floatPtr(10)},
			mockCall:       true,
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "could not set balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockCall {
				serviceMock.On("SetBalance", mock.Anything, mock.Anything, mock.Anything).Return(tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/admin/balance", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
