package models

import "time"

// Budget is one predicted (or user-overridden) spending limit for a
// (user, month, category) triple. BudgetDate is always the first day of
// the month it covers.
type Budget struct {
	ID         int64     `db:"id"          json:"id"`
	UserID     int64     `db:"user_id"     json:"user_id"`
	BudgetDate time.Time `db:"budget_date" json:"budget_date"`
	Category   string    `db:"category"    json:"category"`
	Amount     int       `db:"amount"      json:"amount"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}
