package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sehee-xx/MoneyToad/internal/api/response"
	"github.com/sehee-xx/MoneyToad/internal/auth"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewSignupHandler returns an http.HandlerFunc for POST /api/v1/auth/signup.
func NewSignupHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "a valid email is required", nil)
			return
		}
		if len(req.Password) < 8 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "password must be at least 8 characters", nil)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", nil)
			return
		}

		now := time.Now().UTC()
		user := &models.User{
			Email:        req.Email,
			Name:         strings.TrimSpace(req.Name),
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := st.CreateUser(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", nil)
			return
		}

		response.Created(w, user)
	}
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/auth/login.
func NewLoginHandler(st store.Store, tokens *auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		user, err := st.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Unknown email or wrong password", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in", nil)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Unknown email or wrong password", nil)
			return
		}

		access, err := tokens.IssueAccessToken(user.ID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", nil)
			return
		}
		refresh, err := tokens.IssueRefreshToken(r.Context(), user.ID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue tokens", nil)
			return
		}

		response.JSON(w, tokenPair{AccessToken: access, RefreshToken: refresh})
	}
}

// NewRefreshHandler returns an http.HandlerFunc for POST /api/v1/auth/refresh.
func NewRefreshHandler(tokens *auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "refresh_token is required", nil)
			return
		}

		access, refresh, err := tokens.RotateRefreshToken(r.Context(), req.RefreshToken)
		if errors.Is(err, auth.ErrUnknownRefreshToken) {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown or expired refresh token", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh tokens", nil)
			return
		}

		response.JSON(w, tokenPair{AccessToken: access, RefreshToken: refresh})
	}
}
