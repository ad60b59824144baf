package poller_test

import (
	"context"
	"sync"
	"time"

	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// --- fake clock ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- fake store ---

// fakeStore is an in-memory Store. Jobs and budgets are stored by value
// so assertions see persisted state, not shared pointers.
type fakeStore struct {
	mu      sync.Mutex
	users   map[int64]models.User
	jobs    map[int64]models.AnalysisJob
	budgets map[budgetKey]models.Budget

	nextJobID    int64
	nextBudgetID int64

	saveJobErr error
}

type budgetKey struct {
	userID   int64
	date     time.Time
	category string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[int64]models.User),
		jobs:    make(map[int64]models.AnalysisJob),
		budgets: make(map[budgetKey]models.Budget),
	}
}

func (s *fakeStore) addUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *fakeStore) job(id int64) models.AnalysisJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *fakeStore) budgetRows() []models.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]models.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		rows = append(rows, b)
	}
	return rows
}

func (s *fakeStore) Ping(_ context.Context) error { return nil }

func (s *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) UpdateUserProfile(_ context.Context, id int64, gender string, age int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Gender = &gender
	u.Age = &age
	s.users[id] = u
	return nil
}

func (s *fakeStore) UpdateUserFileID(_ context.Context, id int64, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.FileID = &fileID
	s.users[id] = u
	return nil
}

func (s *fakeStore) UpsertBudget(_ context.Context, budget *models.Budget) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := budgetKey{userID: budget.UserID, date: budget.BudgetDate, category: budget.Category}
	existing, ok := s.budgets[key]
	if ok {
		existing.Amount = budget.Amount
		existing.UpdatedAt = budget.UpdatedAt
		s.budgets[key] = existing
		result := existing
		return &result, nil
	}
	s.nextBudgetID++
	budget.ID = s.nextBudgetID
	s.budgets[key] = *budget
	result := *budget
	return &result, nil
}

func (s *fakeStore) GetBudget(_ context.Context, id int64, userID int64) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.ID == id && b.UserID == userID {
			b := b
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) ListBudgetsForMonth(_ context.Context, userID int64, monthFirstDay time.Time) ([]*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*models.Budget
	for _, b := range s.budgets {
		if b.UserID == userID && b.BudgetDate.Equal(monthFirstDay) {
			b := b
			rows = append(rows, &b)
		}
	}
	return rows, nil
}

func (s *fakeStore) UpdateBudgetAmount(_ context.Context, id int64, userID int64, amount int) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.budgets {
		if b.ID == id && b.UserID == userID {
			b.Amount = amount
			s.budgets[key] = b
			result := b
			return &result, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) CreateJob(_ context.Context, job *models.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextJobID++
	job.ID = s.nextJobID
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeStore) GetJob(_ context.Context, id int64, userID int64) (*models.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &j, nil
}

func (s *fakeStore) FindPollableJobs(_ context.Context, now time.Time, limit int) ([]*models.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []*models.AnalysisJob
	// FIFO by id; ids are assigned in creation order.
	for id := int64(1); id <= s.nextJobID && len(jobs) < limit; id++ {
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		if j.Status != models.JobStatusQueued && j.Status != models.JobStatusRunning {
			continue
		}
		if j.NextPollAt != nil && j.NextPollAt.After(now) {
			continue
		}
		if j.LeasedUntil != nil && !j.LeasedUntil.Before(now) {
			continue
		}
		jCopy := j
		jobs = append(jobs, &jCopy)
	}
	return jobs, nil
}

func (s *fakeStore) SaveJob(_ context.Context, job *models.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveJobErr != nil {
		return s.saveJobErr
	}
	if _, ok := s.jobs[job.ID]; !ok {
		return store.ErrNotFound
	}
	s.jobs[job.ID] = *job
	return nil
}

var _ store.Store = (*fakeStore)(nil)

// --- fake analyzer client ---

// fakeAnalyzer serves canned status/baseline responses per file id and
// records the lease state persisted at the moment Status is called.
type fakeAnalyzer struct {
	mu        sync.Mutex
	statuses  map[string]string
	statusErr map[string]error
	baselines map[string]*models.BaselineReport

	statusCalls   []string
	baselineCalls []string

	// onStatus, when set, runs inside Status before returning.
	onStatus func(fileID string)
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		statuses:  make(map[string]string),
		statusErr: make(map[string]error),
		baselines: make(map[string]*models.BaselineReport),
	}
}

func (a *fakeAnalyzer) Status(_ context.Context, fileID string) (string, error) {
	a.mu.Lock()
	a.statusCalls = append(a.statusCalls, fileID)
	hook := a.onStatus
	err := a.statusErr[fileID]
	status := a.statuses[fileID]
	a.mu.Unlock()

	if hook != nil {
		hook(fileID)
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

func (a *fakeAnalyzer) Baseline(_ context.Context, fileID string) (*models.BaselineReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baselineCalls = append(a.baselineCalls, fileID)
	return a.baselines[fileID], nil
}
