package models

import "time"

// User is an account holder. FileID references the transaction CSV the
// user uploaded to the external analyzer; it is empty until the first
// upload and required before an analysis job can be enqueued.
type User struct {
	ID           int64     `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	Name         string    `db:"name"          json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Gender       *string   `db:"gender"        json:"gender,omitempty"`
	Age          *int      `db:"age"           json:"age,omitempty"`
	FileID       *string   `db:"file_id"       json:"file_id,omitempty"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}
