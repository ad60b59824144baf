package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/sehee-xx/MoneyToad/internal/api/middleware"
	"github.com/sehee-xx/MoneyToad/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	SignupHandler  http.HandlerFunc
	LoginHandler   http.HandlerFunc
	RefreshHandler http.HandlerFunc

	GetMeHandler        http.HandlerFunc
	UpdateMeHandler     http.HandlerFunc
	RegisterFileHandler http.HandlerFunc

	EnqueueAnalysisHandler http.HandlerFunc
	GetJobHandler          http.HandlerFunc

	ListBudgetsHandler  http.HandlerFunc
	UpdateBudgetHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/auth/signup", orNotImplemented(deps.SignupHandler))
	r.Post("/api/v1/auth/login", orNotImplemented(deps.LoginHandler))
	r.Post("/api/v1/auth/refresh", orNotImplemented(deps.RefreshHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/users/me", orNotImplemented(deps.GetMeHandler))
		r.Patch("/api/v1/users/me", orNotImplemented(deps.UpdateMeHandler))
		r.Put("/api/v1/users/me/file", orNotImplemented(deps.RegisterFileHandler))

		r.Post("/api/v1/analysis", orNotImplemented(deps.EnqueueAnalysisHandler))
		r.Get("/api/v1/analysis/{jobID}", orNotImplemented(deps.GetJobHandler))

		r.Get("/api/v1/budgets/{year}/{month}", orNotImplemented(deps.ListBudgetsHandler))
		r.Patch("/api/v1/budgets/{budgetID}", orNotImplemented(deps.UpdateBudgetHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
