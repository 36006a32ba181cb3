package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coursedocs/catalog-api/internal/models"
)

// YearRepository handles persistence for academic years.
type YearRepository struct {
	db *sqlx.DB
}

// NewYearRepository instantiates a year repository.
func NewYearRepository(db *sqlx.DB) *YearRepository {
	return &YearRepository{db: db}
}

// List returns years ordered newest first, optionally filtered by course.
// Each row carries its parent course and its semesters.
func (r *YearRepository) List(ctx context.Context, courseID *int64) ([]models.Year, error) {
	var years []models.Year
	var err error
	if courseID != nil {
		const query = `SELECT id, year, course_id, created_at, updated_at FROM years WHERE course_id = $1 ORDER BY year DESC`
		err = r.db.SelectContext(ctx, &years, query, *courseID)
	} else {
		const query = `SELECT id, year, course_id, created_at, updated_at FROM years ORDER BY year DESC`
		err = r.db.SelectContext(ctx, &years, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	if len(years) == 0 {
		return []models.Year{}, nil
	}
	if err := r.attachRelations(ctx, years); err != nil {
		return nil, err
	}
	return years, nil
}

// FindByID loads a single year row.
func (r *YearRepository) FindByID(ctx context.Context, id int64) (*models.Year, error) {
	const query = `SELECT id, year, course_id, created_at, updated_at FROM years WHERE id = $1`
	var year models.Year
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// FindDetail loads a year with its course and semesters attached.
func (r *YearRepository) FindDetail(ctx context.Context, id int64) (*models.Year, error) {
	year, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	years := []models.Year{*year}
	if err := r.attachRelations(ctx, years); err != nil {
		return nil, err
	}
	return &years[0], nil
}

// Exists checks whether a year row is present.
func (r *YearRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1 FROM years WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check year existence: %w", err)
	}
	return true, nil
}

// Create inserts a new year and assigns the generated id.
func (r *YearRepository) Create(ctx context.Context, year *models.Year) error {
	now := time.Now().UTC()
	year.CreatedAt = now
	year.UpdatedAt = now

	const query = `INSERT INTO years (year, course_id, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, year.Year, year.CourseID, year.CreatedAt, year.UpdatedAt).Scan(&year.ID); err != nil {
		return fmt.Errorf("create year: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a year.
func (r *YearRepository) Update(ctx context.Context, year *models.Year) error {
	year.UpdatedAt = time.Now().UTC()
	const query = `UPDATE years SET year = $1, course_id = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, year.Year, year.CourseID, year.UpdatedAt, year.ID); err != nil {
		return fmt.Errorf("update year: %w", err)
	}
	return nil
}

// Delete removes a year; semesters and units cascade.
func (r *YearRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM years WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete year: %w", err)
	}
	return nil
}

func (r *YearRepository) attachRelations(ctx context.Context, years []models.Year) error {
	courseIDs := make([]int64, 0, len(years))
	yearIDs := make([]int64, len(years))
	seen := make(map[int64]bool)
	for i, year := range years {
		yearIDs[i] = year.ID
		if !seen[year.CourseID] {
			seen[year.CourseID] = true
			courseIDs = append(courseIDs, year.CourseID)
		}
	}

	query, args, err := sqlx.In(`SELECT id, name, description, created_at, updated_at FROM courses WHERE id IN (?)`, courseIDs)
	if err != nil {
		return fmt.Errorf("build course query: %w", err)
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load year courses: %w", err)
	}
	coursesByID := make(map[int64]models.Course, len(courses))
	for _, course := range courses {
		coursesByID[course.ID] = course
	}

	query, args, err = sqlx.In(`SELECT id, semester, year_id, created_at, updated_at FROM semesters WHERE year_id IN (?) ORDER BY created_at DESC`, yearIDs)
	if err != nil {
		return fmt.Errorf("build semester query: %w", err)
	}
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load year semesters: %w", err)
	}
	semestersByYear := make(map[int64][]models.Semester)
	for _, semester := range semesters {
		semestersByYear[semester.YearID] = append(semestersByYear[semester.YearID], semester)
	}

	for i := range years {
		if course, ok := coursesByID[years[i].CourseID]; ok {
			c := course
			years[i].Course = &c
		}
		years[i].Semesters = semestersByYear[years[i].ID]
	}
	return nil
}
