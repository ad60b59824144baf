package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	mw "github.com/sehee-xx/MoneyToad/internal/api/middleware"
	"github.com/sehee-xx/MoneyToad/internal/api/response"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// NewListBudgetsHandler returns an http.HandlerFunc for
// GET /api/v1/budgets/{year}/{month}.
func NewListBudgetsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil || year < 2000 || year > 2100 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "year must be a valid year", nil)
			return
		}
		month, err := strconv.Atoi(chi.URLParam(r, "month"))
		if err != nil || month < 1 || month > 12 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "month must be 1-12", nil)
			return
		}

		monthFirstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		budgets, err := st.ListBudgetsForMonth(r.Context(), userID, monthFirstDay)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list budgets", nil)
			return
		}
		if budgets == nil {
			budgets = []*models.Budget{}
		}

		response.JSON(w, budgets)
	}
}

// NewUpdateBudgetHandler returns an http.HandlerFunc for
// PATCH /api/v1/budgets/{budgetID}. Manual overrides share the same
// last-write-wins semantics as materialized predictions.
func NewUpdateBudgetHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		budgetID, err := strconv.ParseInt(chi.URLParam(r, "budgetID"), 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "budgetID must be an integer", nil)
			return
		}

		var req struct {
			Amount *int `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "amount is required", nil)
			return
		}
		if *req.Amount < 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "amount must be non-negative", nil)
			return
		}

		budget, err := st.UpdateBudgetAmount(r.Context(), budgetID, userID, *req.Amount)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Budget not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update budget", nil)
			return
		}

		response.JSON(w, budget)
	}
}
