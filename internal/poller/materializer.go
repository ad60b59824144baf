package poller

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sehee-xx/MoneyToad/internal/analyzer"
	"github.com/sehee-xx/MoneyToad/internal/store"
	"github.com/sehee-xx/MoneyToad/pkg/models"
)

// Materializer converts a completed job's baseline report into budget
// rows. Upserts are keyed by (user, month, category), so re-running the
// same report overwrites amounts instead of duplicating rows.
type Materializer struct {
	store    store.Store
	analyzer analyzer.Client
	clock    Clock
}

// NewMaterializer creates a Materializer.
func NewMaterializer(st store.Store, client analyzer.Client, clock Clock) *Materializer {
	return &Materializer{store: st, analyzer: client, clock: clock}
}

// Materialize fetches the baseline for a file and upserts one budget
// row per (month, category) prediction. A missing baseline is not an
// error; there is simply nothing to persist.
func (m *Materializer) Materialize(ctx context.Context, userID int64, fileID string) error {
	report, err := m.analyzer.Baseline(ctx, fileID)
	if err != nil {
		return fmt.Errorf("fetching baseline: %w", err)
	}
	if report == nil || len(report.BaselineMonths) == 0 {
		return nil
	}

	now := m.clock.Now()
	for _, bm := range report.BaselineMonths {
		if len(bm.CategoryPredictions) == 0 {
			continue
		}
		budgetDate := time.Date(bm.Year, time.Month(bm.Month), 1, 0, 0, 0, 0, time.UTC)

		for category, pred := range bm.CategoryPredictions {
			budget := &models.Budget{
				UserID:     userID,
				BudgetDate: budgetDate,
				Category:   category,
				Amount:     roundAmount(pred.PredictedAmount),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if _, err := m.store.UpsertBudget(ctx, budget); err != nil {
				return fmt.Errorf("upserting budget %d-%02d/%s: %w", bm.Year, bm.Month, category, err)
			}
		}
	}
	return nil
}

// roundAmount rounds a predicted amount to the nearest whole unit,
// saturating at the int32 range the amount column can hold.
func roundAmount(predicted float64) int {
	if math.IsNaN(predicted) {
		return 0
	}
	r := math.Round(predicted)
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	if r < math.MinInt32 {
		return math.MinInt32
	}
	return int(r)
}
