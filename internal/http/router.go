package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/startupops/startupops/internal/config"
	"github.com/startupops/startupops/internal/execution"
	"github.com/startupops/startupops/internal/finance"
	"github.com/startupops/startupops/internal/http/features/account"
	"github.com/startupops/startupops/internal/http/features/board"
	"github.com/startupops/startupops/internal/http/features/investor"
	"github.com/startupops/startupops/internal/http/features/ledger"
	"github.com/startupops/startupops/internal/http/features/portal"
	"github.com/startupops/startupops/internal/http/features/startups"
	"github.com/startupops/startupops/internal/http/features/team"
	"github.com/startupops/startupops/internal/http/middleware"
	"github.com/startupops/startupops/internal/httputil"
	"github.com/startupops/startupops/internal/matching"
	"github.com/startupops/startupops/internal/metrics"
	"github.com/startupops/startupops/internal/workspace"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Profiles        account.Profiles
	Registry        *workspace.Registry
	Tracker         *execution.Tracker
	Finance         *finance.Service
	Engine          *matching.Engine
	Metrics         *metrics.Service
	JWTSecret       []byte
	JWTIssuer       string
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	auth := middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer)

	accountHandler := account.NewHandler(cfg.Logger, cfg.Profiles)
	startupsHandler := startups.NewHandler(cfg.Logger, cfg.Registry)
	teamHandler := team.NewHandler(cfg.Logger, cfg.Registry)
	boardHandler := board.NewHandler(cfg.Logger, cfg.Tracker)
	ledgerHandler := ledger.NewHandler(cfg.Logger, cfg.Finance)
	investorHandler := investor.NewHandler(cfg.Logger, cfg.Engine)
	portalHandler := portal.NewHandler(cfg.Logger, cfg.Registry, cfg.Metrics)

	// Account routes
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(rateLimiters["default"])
		r.Post("/auth/verify", accountHandler.Verify)
		r.Get("/auth/me", accountHandler.Me)
		r.Put("/auth/profile", accountHandler.UpdateProfile)
	})

	// Invite redemption gets its own, tighter limiter
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(rateLimiters["join"])
		r.Post("/startups/join", startupsHandler.Join)
	})

	// Workspace routes
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(rateLimiters["default"])

		r.Post("/startups", startupsHandler.Create)
		r.Get("/startups", startupsHandler.List)
		r.Get("/startups/{id}", startupsHandler.Get)
		r.Put("/startups/{id}", startupsHandler.Update)
		r.Get("/startups/{id}/invite-code", startupsHandler.InviteCode)
		r.Post("/startups/{id}/regenerate-invite", startupsHandler.RegenerateInvite)
		r.Get("/startups/{id}/subscription", startupsHandler.Subscription)
		r.Post("/startups/{id}/subscription", startupsHandler.UpdateSubscription)

		r.Get("/startups/{id}/members", teamHandler.Members)
		r.Delete("/startups/{id}/members/{userId}", teamHandler.Remove)
		r.Put("/startups/{id}/members/{userId}/role", teamHandler.ChangeRole)

		r.Post("/startups/{id}/tasks", boardHandler.CreateTask)
		r.Get("/startups/{id}/tasks", boardHandler.ListTasks)
		r.Put("/tasks/{taskId}", boardHandler.UpdateTask)
		r.Patch("/tasks/{taskId}/status", boardHandler.UpdateTaskStatus)
		r.Delete("/tasks/{taskId}", boardHandler.DeleteTask)

		r.Post("/startups/{id}/milestones", boardHandler.CreateMilestone)
		r.Get("/startups/{id}/milestones", boardHandler.ListMilestones)
		r.Put("/milestones/{milestoneId}", boardHandler.UpdateMilestone)
		r.Delete("/milestones/{milestoneId}", boardHandler.DeleteMilestone)

		r.Get("/startups/{id}/analytics", boardHandler.Analytics)

		r.Post("/startups/{id}/finance/income", ledgerHandler.AddIncome)
		r.Get("/startups/{id}/finance/income", ledgerHandler.ListIncome)
		r.Delete("/startups/{id}/finance/income/{entryId}", ledgerHandler.DeleteIncome)
		r.Post("/startups/{id}/finance/expenses", ledgerHandler.AddExpense)
		r.Get("/startups/{id}/finance/expenses", ledgerHandler.ListExpenses)
		r.Delete("/startups/{id}/finance/expenses/{entryId}", ledgerHandler.DeleteExpense)
		r.Post("/startups/{id}/finance/investments", ledgerHandler.AddInvestment)
		r.Get("/startups/{id}/finance/investments", ledgerHandler.ListInvestments)
		r.Delete("/startups/{id}/finance/investments/{entryId}", ledgerHandler.DeleteInvestment)
		r.Get("/startups/{id}/finance/summary", ledgerHandler.Summary)

		r.Get("/startups/{id}/investor-view", portalHandler.View)
		r.Get("/startups/{id}/investors", portalHandler.List)
		r.Post("/startups/{id}/investors/invite", portalHandler.Invite)
		r.Delete("/startups/{id}/investors/{userId}", portalHandler.Revoke)
	})

	// Investor discovery routes
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(rateLimiters["swipe"])
		r.Post("/investor/swipe/{workspaceId}", investorHandler.Swipe)
		r.Delete("/investor/swipe/{workspaceId}", investorHandler.Undo)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(rateLimiters["default"])
		r.Get("/investor/browse", investorHandler.Browse)
		r.Get("/investor/matches", investorHandler.Matches)
		r.Delete("/investor/matches/{workspaceId}", investorHandler.RemoveMatch)
	})

	return r
}
