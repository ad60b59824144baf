package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	mw "github.com/sehee-xx/MoneyToad/internal/api/middleware"
	"github.com/sehee-xx/MoneyToad/internal/api/response"
	"github.com/sehee-xx/MoneyToad/internal/cache"
	"github.com/sehee-xx/MoneyToad/internal/poller"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

const jobStatusTTL = 30 * time.Minute

// Enqueuer is the slice of the polling core the analysis handler needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID int64) (*models.AnalysisJob, error)
}

// NewEnqueueAnalysisHandler returns an http.HandlerFunc for
// POST /api/v1/analysis. It creates a queued job; all further progress
// is driven by the scheduler, so the client gets a 202 and polls the
// job endpoint.
func NewEnqueueAnalysisHandler(enq Enqueuer, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		job, err := enq.Enqueue(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, poller.ErrUnknownUser):
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			case errors.Is(err, poller.ErrNoFileReference):
				response.Error(w, http.StatusBadRequest, "NO_FILE",
					"Upload a transaction file before requesting analysis", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to enqueue analysis", nil)
			}
			return
		}

		// Best effort; the store stays authoritative.
		_ = ca.SetJobStatus(r.Context(), job.ID, job.Status, jobStatusTTL)

		response.Accepted(w, job)
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/analysis/{jobID}.
func NewGetJobHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be an integer", nil)
			return
		}

		job, err := st.GetJob(r.Context(), jobID, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		_ = ca.SetJobStatus(r.Context(), job.ID, job.Status, jobStatusTTL)

		response.JSON(w, job)
	}
}
