package models

import "time"

// Year is an academic year inside a course (e.g. 2025).
type Year struct {
	ID        int64     `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	CourseID  int64     `db:"course_id" json:"courseId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Course    *Course    `json:"course,omitempty"`
	Semesters []Semester `json:"semesters,omitempty"`
}
