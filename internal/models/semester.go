package models

import "time"

// Semester is a labelled term inside a year (e.g. "Fall").
type Semester struct {
	ID        int64     `db:"id" json:"id"`
	Semester  string    `db:"semester" json:"semester"`
	YearID    int64     `db:"year_id" json:"yearId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Year  *Year  `json:"year,omitempty"`
	Units []Unit `json:"units,omitempty"`
}
