package models

import "time"

// Unit is the leaf teaching block inside a semester.
type Unit struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Content    *string   `db:"content" json:"content,omitempty"`
	SemesterID int64     `db:"semester_id" json:"semesterId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`

	Semester  *Semester  `json:"semester,omitempty"`
	Documents []Document `json:"documents,omitempty"`
}
