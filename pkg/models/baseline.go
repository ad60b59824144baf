package models

// BaselineReport is the analyzer's prediction payload, fetched once the
// analysis for a file has completed. Each month carries per-category
// predicted amounts which get materialized into budget rows.
type BaselineReport struct {
	FileID         string          `json:"file_id"`
	BaselineMonths []BaselineMonth `json:"baseline_months"`
	MonthsCount    int             `json:"months_count"`
	CategoryFilter string          `json:"category_filter"`
}

type BaselineMonth struct {
	Year                int                           `json:"year"`
	Month               int                           `json:"month"`
	TotalPredicted      float64                       `json:"total_predicted"`
	CategoriesCount     int                           `json:"categories_count"`
	CategoryPredictions map[string]CategoryPrediction `json:"category_predictions"`
	TrainingDataUntil   string                        `json:"training_data_until"`
}

type CategoryPrediction struct {
	PredictedAmount float64 `json:"predicted_amount"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
}
