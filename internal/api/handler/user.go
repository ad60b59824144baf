package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	mw "github.com/sehee-xx/MoneyToad/internal/api/middleware"
	"github.com/sehee-xx/MoneyToad/internal/api/response"
	"github.com/sehee-xx/MoneyToad/internal/store"
)

// NewGetMeHandler returns an http.HandlerFunc for GET /api/v1/users/me.
func NewGetMeHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		user, err := st.GetUser(r.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", nil)
			return
		}

		response.JSON(w, user)
	}
}

// NewUpdateMeHandler returns an http.HandlerFunc for PATCH /api/v1/users/me.
func NewUpdateMeHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			Gender string `json:"gender"`
			Age    int    `json:"age"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Gender == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "gender is required", nil)
			return
		}
		if req.Age < 0 || req.Age > 150 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "age must be between 0 and 150", nil)
			return
		}

		if err := st.UpdateUserProfile(r.Context(), userID, req.Gender, req.Age); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", nil)
			return
		}

		user, err := st.GetUser(r.Context(), userID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", nil)
			return
		}
		response.JSON(w, user)
	}
}

// NewRegisterFileHandler returns an http.HandlerFunc for
// PUT /api/v1/users/me/file. The analyzer assigns a file id when the
// user's transaction CSV is uploaded to it; registering that id here is
// what makes the user eligible for analysis enqueue. Re-registering
// overwrites the previous reference.
func NewRegisterFileHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req struct {
			FileID string `json:"file_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		req.FileID = strings.TrimSpace(req.FileID)
		if req.FileID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "file_id is required", nil)
			return
		}

		if err := st.UpdateUserFileID(r.Context(), userID, req.FileID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register file", nil)
			return
		}

		user, err := st.GetUser(r.Context(), userID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", nil)
			return
		}
		response.JSON(w, user)
	}
}
