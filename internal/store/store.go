package store

import (
	"context"
	"errors"
	"time"

	"github.com/sehee-xx/MoneyToad/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, gender string, age int) error
	UpdateUserFileID(ctx context.Context, id int64, fileID string) error

	UpsertBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	GetBudget(ctx context.Context, id int64, userID int64) (*models.Budget, error)
	ListBudgetsForMonth(ctx context.Context, userID int64, monthFirstDay time.Time) ([]*models.Budget, error)
	UpdateBudgetAmount(ctx context.Context, id int64, userID int64, amount int) (*models.Budget, error)

	CreateJob(ctx context.Context, job *models.AnalysisJob) error
	GetJob(ctx context.Context, id int64, userID int64) (*models.AnalysisJob, error)
	FindPollableJobs(ctx context.Context, now time.Time, limit int) ([]*models.AnalysisJob, error)
	SaveJob(ctx context.Context, job *models.AnalysisJob) error
}
