package models

import "time"

// Course is the root of the content hierarchy.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	Years []Year `json:"years,omitempty"`
}

// CatalogSummary aggregates per-course child counts for exports.
type CatalogSummary struct {
	CourseID      int64  `db:"course_id"`
	CourseName    string `db:"course_name"`
	YearCount     int    `db:"year_count"`
	SemesterCount int    `db:"semester_count"`
	UnitCount     int    `db:"unit_count"`
	DocumentCount int    `db:"document_count"`
}
