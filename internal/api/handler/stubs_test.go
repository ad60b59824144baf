package handler

import (
	"context"
	"sync"
	"time"

	"github.com/sehee-xx/MoneyToad/internal/cache"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// fakeStore overrides just the methods a handler under test touches.
// Anything else panics through the embedded nil interface.
type fakeStore struct {
	store.Store

	createUser         func(ctx context.Context, user *models.User) error
	getUser            func(ctx context.Context, id int64) (*models.User, error)
	getUserByEmail     func(ctx context.Context, email string) (*models.User, error)
	updateUserProfile  func(ctx context.Context, id int64, gender string, age int) error
	updateUserFileID   func(ctx context.Context, id int64, fileID string) error
	createJob          func(ctx context.Context, job *models.AnalysisJob) error
	listBudgets        func(ctx context.Context, userID int64, monthFirstDay time.Time) ([]*models.Budget, error)
	updateBudgetAmount func(ctx context.Context, id, userID int64, amount int) (*models.Budget, error)
	getJob             func(ctx context.Context, id, userID int64) (*models.AnalysisJob, error)
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	return f.createUser(ctx, user)
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return f.getUser(ctx, id)
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getUserByEmail(ctx, email)
}

func (f *fakeStore) UpdateUserProfile(ctx context.Context, id int64, gender string, age int) error {
	return f.updateUserProfile(ctx, id, gender, age)
}

func (f *fakeStore) UpdateUserFileID(ctx context.Context, id int64, fileID string) error {
	return f.updateUserFileID(ctx, id, fileID)
}

func (f *fakeStore) CreateJob(ctx context.Context, job *models.AnalysisJob) error {
	return f.createJob(ctx, job)
}

func (f *fakeStore) ListBudgetsForMonth(ctx context.Context, userID int64, monthFirstDay time.Time) ([]*models.Budget, error) {
	return f.listBudgets(ctx, userID, monthFirstDay)
}

func (f *fakeStore) UpdateBudgetAmount(ctx context.Context, id, userID int64, amount int) (*models.Budget, error) {
	return f.updateBudgetAmount(ctx, id, userID, amount)
}

func (f *fakeStore) GetJob(ctx context.Context, id, userID int64) (*models.AnalysisJob, error) {
	return f.getJob(ctx, id, userID)
}

// mapCache is an in-memory Cache good enough for refresh token round trips.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Ping(_ context.Context) error { return nil }

func (c *mapCache) SetJobStatus(ctx context.Context, jobID int64, status string, ttl time.Duration) error {
	return c.Set(ctx, cache.JobStatusKey(jobID), []byte(status), ttl)
}

func (c *mapCache) GetJobStatus(ctx context.Context, jobID int64) (string, bool, error) {
	v, ok, err := c.Get(ctx, cache.JobStatusKey(jobID))
	return string(v), ok, err
}

func (c *mapCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

var _ cache.Cache = (*mapCache)(nil)
