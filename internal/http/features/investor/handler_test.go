package investor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/http/middleware"
)

func withIdentity(req *http.Request, isInvestor bool) *http.Request {
	identity := domain.Identity{
		UserID:   uuid.New(),
		Email:    "vc@example.com",
		Investor: isInvestor,
	}
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, identity)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlers_Unauthorized(t *testing.T) {
	handler := &Handler{engine: nil}

	tests := []struct {
		name string
		call http.HandlerFunc
	}{
		{"browse", handler.Browse},
		{"swipe", handler.Swipe},
		{"undo", handler.Undo},
		{"matches", handler.Matches},
		{"remove match", handler.RemoveMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/investor/browse", nil)
			rec := httptest.NewRecorder()

			tt.call(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestSwipe_Validation(t *testing.T) {
	tests := []struct {
		name           string
		workspaceID    string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "invalid workspace id",
			workspaceID:    "not-a-uuid",
			body:           `{"action": "interested"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid workspace id",
		},
		{
			name:           "invalid json",
			workspaceID:    uuid.NewString(),
			body:           `{invalid}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
	}

	handler := &Handler{engine: nil}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/investor/swipe/"+tt.workspaceID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = withIdentity(req, true)
			req = withURLParam(req, "workspaceId", tt.workspaceID)
			rec := httptest.NewRecorder()

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validation should have failed before reaching the engine")
				}
			}()

			handler.Swipe(rec, req)

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

func TestUndo_InvalidWorkspaceID(t *testing.T) {
	handler := &Handler{engine: nil}

	req := httptest.NewRequest(http.MethodDelete, "/investor/swipe/not-a-uuid", nil)
	req = withIdentity(req, true)
	req = withURLParam(req, "workspaceId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.Undo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
