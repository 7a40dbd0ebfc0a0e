package ledger

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

func withIdentity(req *http.Request) *http.Request {
	identity := domain.Identity{
		UserID: uuid.New(),
		Email:  "founder@example.com",
	}
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, identity)
	return req.WithContext(ctx)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for name, value := range params {
		rctx.URLParams.Add(name, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlers_Unauthorized(t *testing.T) {
	handler := &Handler{service: nil}

	tests := []struct {
		name string
		call http.HandlerFunc
	}{
		{"add income", handler.AddIncome},
		{"list expenses", handler.ListExpenses},
		{"add investment", handler.AddInvestment},
		{"delete income", handler.DeleteIncome},
		{"summary", handler.Summary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/startups/finance", nil)
			rec := httptest.NewRecorder()

			tt.call(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAddEntry_Validation(t *testing.T) {
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
			body:           `{"title": "Seed round", "amount": 100}`,
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

	handler := &Handler{service: nil}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/startups/"+tt.workspaceID+"/finance/income", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = withIdentity(req)
			req = withURLParams(req, map[string]string{"id": tt.workspaceID})
			rec := httptest.NewRecorder()

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validation should have failed before reaching the service")
				}
			}()

			handler.AddIncome(rec, req)

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

func TestDeleteEntry_InvalidEntryID(t *testing.T) {
	handler := &Handler{service: nil}

	req := httptest.NewRequest(http.MethodDelete, "/startups/x/finance/expenses/not-a-uuid", nil)
	req = withIdentity(req)
	req = withURLParams(req, map[string]string{
		"id":      uuid.NewString(),
		"entryId": "not-a-uuid",
	})
	rec := httptest.NewRecorder()

	handler.DeleteExpense(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var response map[string]string
	json.NewDecoder(rec.Body).Decode(&response)
	if response["error"] != "invalid entry id" {
		t.Errorf("Error = %q, want %q", response["error"], "invalid entry id")
	}
}
