package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, gender, age, file_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		user.Email, user.Name, user.PasswordHash, user.Gender, user.Age, user.FileID,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, gender, age, file_id, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Gender, &u.Age, &u.FileID,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, gender, age, file_id, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Gender, &u.Age, &u.FileID,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UpdateUserProfile(ctx context.Context, id int64, gender string, age int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET gender = $2, age = $3, updated_at = NOW() WHERE id = $1`,
		id, gender, age)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserFileID binds the user's uploaded transaction file. Repeat
// registrations overwrite the previous reference; subsequent analysis
// runs target the new file.
func (s *PostgresStore) UpdateUserFileID(ctx context.Context, id int64, fileID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET file_id = $2, updated_at = NOW() WHERE id = $1`,
		id, fileID)
	if err != nil {
		return fmt.Errorf("update user file id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Budgets ---

// UpsertBudget creates or overwrites the budget for the row's
// (user_id, budget_date, category) key. Re-running with the same amount
// is a no-op beyond the updated_at bump.
func (s *PostgresStore) UpsertBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	var result models.Budget
	err := s.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, budget_date, category, amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, budget_date, category) DO UPDATE SET
		   amount = EXCLUDED.amount,
		   updated_at = NOW()
		 RETURNING id, user_id, budget_date, category, amount, created_at, updated_at`,
		budget.UserID, budget.BudgetDate, budget.Category, budget.Amount,
		budget.CreatedAt, budget.UpdatedAt,
	).Scan(&result.ID, &result.UserID, &result.BudgetDate, &result.Category, &result.Amount,
		&result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	return &result, nil
}

func (s *PostgresStore) GetBudget(ctx context.Context, id int64, userID int64) (*models.Budget, error) {
	var b models.Budget
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, budget_date, category, amount, created_at, updated_at
		 FROM budgets WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&b.ID, &b.UserID, &b.BudgetDate, &b.Category, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) ListBudgetsForMonth(ctx context.Context, userID int64, monthFirstDay time.Time) ([]*models.Budget, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, budget_date, category, amount, created_at, updated_at
		 FROM budgets WHERE user_id = $1 AND budget_date = $2 ORDER BY category ASC`,
		userID, monthFirstDay)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.BudgetDate, &b.Category, &b.Amount,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	return budgets, rows.Err()
}

func (s *PostgresStore) UpdateBudgetAmount(ctx context.Context, id int64, userID int64, amount int) (*models.Budget, error) {
	var b models.Budget
	err := s.pool.QueryRow(ctx,
		`UPDATE budgets SET amount = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, budget_date, category, amount, created_at, updated_at`,
		id, userID, amount,
	).Scan(&b.ID, &b.UserID, &b.BudgetDate, &b.Category, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update budget amount: %w", err)
	}
	return &b, nil
}

// --- Analysis Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.AnalysisJob) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO analysis_jobs (user_id, file_id, status, retry_count, last_message, next_poll_at, leased_until, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		job.UserID, job.FileID, job.Status, job.RetryCount, job.LastMessage,
		job.NextPollAt, job.LeasedUntil, job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id int64, userID int64) (*models.AnalysisJob, error) {
	var j models.AnalysisJob
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, file_id, status, retry_count, last_message, next_poll_at, leased_until, created_at, updated_at
		 FROM analysis_jobs WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&j.ID, &j.UserID, &j.FileID, &j.Status, &j.RetryCount, &j.LastMessage,
		&j.NextPollAt, &j.LeasedUntil, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// FindPollableJobs returns jobs eligible for a poll step at the given
// instant, oldest first. A job is eligible when it is not terminal, its
// next poll time has arrived (or was never set), and no live lease is
// held on it.
func (s *PostgresStore) FindPollableJobs(ctx context.Context, now time.Time, limit int) ([]*models.AnalysisJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, file_id, status, retry_count, last_message, next_poll_at, leased_until, created_at, updated_at
		 FROM analysis_jobs
		 WHERE status IN ($1, $2)
		   AND (next_poll_at IS NULL OR next_poll_at <= $3)
		   AND (leased_until IS NULL OR leased_until < $3)
		 ORDER BY created_at ASC
		 LIMIT $4`,
		models.JobStatusQueued, models.JobStatusRunning, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find pollable jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.AnalysisJob
	for rows.Next() {
		var j models.AnalysisJob
		if err := rows.Scan(&j.ID, &j.UserID, &j.FileID, &j.Status, &j.RetryCount, &j.LastMessage,
			&j.NextPollAt, &j.LeasedUntil, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// SaveJob writes the full job row back. The job's row is the unit of
// atomicity; there is no cross-job transaction.
func (s *PostgresStore) SaveJob(ctx context.Context, job *models.AnalysisJob) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = $2, retry_count = $3, last_message = $4, next_poll_at = $5,
		     leased_until = $6, updated_at = $7
		 WHERE id = $1`,
		job.ID, job.Status, job.RetryCount, job.LastMessage, job.NextPollAt,
		job.LeasedUntil, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
