// Package ledger exposes the finance endpoints: income, expenses,
// investments and the financial summary.
package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/finance"
	"github.com/startupops/startupops/internal/http/middleware"
	"github.com/startupops/startupops/internal/httputil"
)

// Handler handles finance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *finance.Service
}

// NewHandler creates a new ledger handler.
func NewHandler(logger *slog.Logger, service *finance.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// EntryRequest represents a ledger entry creation request. The
// investment-only fields are ignored on income and expense paths.
type EntryRequest struct {
	Title          string     `json:"title"`
	Amount         float64    `json:"amount"`
	Category       string     `json:"category"`
	EntryDate      *time.Time `json:"entry_date"`
	Notes          string     `json:"notes"`
	EquityPct      *float64   `json:"equity_percentage"`
	InvestorName   *string    `json:"investor_name"`
	InvestmentType *string    `json:"investment_type"`
}

// EntryResponse represents a ledger entry.
type EntryResponse struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Amount         float64   `json:"amount"`
	Category       string    `json:"category,omitempty"`
	EntryDate      time.Time `json:"entry_date"`
	Notes          string    `json:"notes,omitempty"`
	EquityPct      *float64  `json:"equity_percentage,omitempty"`
	InvestorName   *string   `json:"investor_name,omitempty"`
	InvestmentType *string   `json:"investment_type,omitempty"`
	CreatedBy      string    `json:"created_by"`
}

func toResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:             e.ID.String(),
		Kind:           string(e.Kind),
		Title:          e.Title,
		Amount:         e.Amount,
		Category:       e.Category,
		EntryDate:      e.EntryDate,
		Notes:          e.Notes,
		EquityPct:      e.EquityPct,
		InvestorName:   e.InvestorName,
		InvestmentType: e.InvestmentType,
		CreatedBy:      e.CreatedBy.String(),
	}
}

func (h *Handler) add(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentity(r.Context())
		if !ok {
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
			return
		}

		var req EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}

		in := finance.EntryInput{
			Title:          req.Title,
			Amount:         req.Amount,
			Category:       req.Category,
			Notes:          req.Notes,
			EquityPct:      req.EquityPct,
			InvestorName:   req.InvestorName,
			InvestmentType: req.InvestmentType,
		}
		if req.EntryDate != nil {
			in.EntryDate = *req.EntryDate
		}

		e, err := h.service.AddEntry(r.Context(), identity.UserID, workspaceID, kind, in)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}
		httputil.JSON(w, http.StatusCreated, toResponse(e))
	}
}

func (h *Handler) list(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentity(r.Context())
		if !ok {
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
			return
		}

		entries, err := h.service.ListEntries(r.Context(), identity.UserID, workspaceID, kind)
		if err != nil {
			httputil.DomainError(w, err)
			return
		}

		out := make([]EntryResponse, len(entries))
		for i, e := range entries {
			out[i] = toResponse(e)
		}
		httputil.JSON(w, http.StatusOK, out)
	}
}

func (h *Handler) remove(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentity(r.Context())
		if !ok {
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
			return
		}
		entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid entry id")
			return
		}

		if err := h.service.DeleteEntry(r.Context(), identity.UserID, workspaceID, entryID, kind); err != nil {
			httputil.DomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AddIncome handles POST /startups/{id}/finance/income.
func (h *Handler) AddIncome(w http.ResponseWriter, r *http.Request) {
	h.add(domain.LedgerIncome)(w, r)
}

// ListIncome handles GET /startups/{id}/finance/income.
func (h *Handler) ListIncome(w http.ResponseWriter, r *http.Request) {
	h.list(domain.LedgerIncome)(w, r)
}

// DeleteIncome handles DELETE /startups/{id}/finance/income/{entryId}.
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	h.remove(domain.LedgerIncome)(w, r)
}

// AddExpense handles POST /startups/{id}/finance/expenses.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	h.add(domain.LedgerExpense)(w, r)
}

// ListExpenses handles GET /startups/{id}/finance/expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	h.list(domain.LedgerExpense)(w, r)
}

// DeleteExpense handles DELETE /startups/{id}/finance/expenses/{entryId}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	h.remove(domain.LedgerExpense)(w, r)
}

// AddInvestment handles POST /startups/{id}/finance/investments.
func (h *Handler) AddInvestment(w http.ResponseWriter, r *http.Request) {
	h.add(domain.LedgerInvestment)(w, r)
}

// ListInvestments handles GET /startups/{id}/finance/investments.
func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	h.list(domain.LedgerInvestment)(w, r)
}

// DeleteInvestment handles DELETE /startups/{id}/finance/investments/{entryId}.
func (h *Handler) DeleteInvestment(w http.ResponseWriter, r *http.Request) {
	h.remove(domain.LedgerInvestment)(w, r)
}

// Summary returns the financial rollup.
// GET /startups/{id}/finance/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	sum, err := h.service.Summary(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sum)
}
