package account

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/http/middleware"
)

func withIdentity(req *http.Request) *http.Request {
	identity := domain.Identity{
		UserID: uuid.New(),
		Email:  "founder@example.com",
		Name:   "Founder",
	}
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, identity)
	return req.WithContext(ctx)
}

func TestHandlers_Unauthorized(t *testing.T) {
	handler := &Handler{profiles: nil}

	tests := []struct {
		name string
		call http.HandlerFunc
	}{
		{"verify", handler.Verify},
		{"me", handler.Me},
		{"update profile", handler.UpdateProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			rec := httptest.NewRecorder()

			tt.call(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "invalid json",
			body:           `{invalid}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
		{
			name:           "empty body",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "full_name is required",
		},
		{
			name:           "whitespace name",
			body:           `{"full_name": "   "}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "full_name is required",
		},
	}

	handler := &Handler{profiles: nil}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/auth/profile", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = withIdentity(req)
			rec := httptest.NewRecorder()

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validation should have failed before reaching the store")
				}
			}()

			handler.UpdateProfile(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.expectedStatus)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != tt.expectedError {
				t.Errorf("Error = %q, want %q", response["error"], tt.expectedError)
			}
		})
	}
}
