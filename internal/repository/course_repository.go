package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coursedocs/catalog-api/internal/models"
)

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses ordered by name with their years attached.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	const query = `SELECT id, name, description, created_at, updated_at FROM courses ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if len(courses) == 0 {
		return []models.Course{}, nil
	}

	ids := make([]int64, len(courses))
	for i, course := range courses {
		ids[i] = course.ID
	}
	years, err := r.yearsByCourseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[int64][]models.Year, len(courses))
	for _, year := range years {
		byCourse[year.CourseID] = append(byCourse[year.CourseID], year)
	}
	for i := range courses {
		courses[i].Years = byCourse[courses[i].ID]
	}
	return courses, nil
}

// FindByID loads a single course row.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindTree loads a course with its full years → semesters → units subtree.
func (r *CourseRepository) FindTree(ctx context.Context, id int64) (*models.Course, error) {
	course, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	years, err := r.yearsByCourseIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		course.Years = []models.Year{}
		return course, nil
	}

	yearIDs := make([]int64, len(years))
	for i, year := range years {
		yearIDs[i] = year.ID
	}
	query, args, err := sqlx.In(`SELECT id, semester, year_id, created_at, updated_at FROM semesters WHERE year_id IN (?) ORDER BY created_at DESC`, yearIDs)
	if err != nil {
		return nil, fmt.Errorf("build semester query: %w", err)
	}
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load course semesters: %w", err)
	}

	if len(semesters) > 0 {
		semesterIDs := make([]int64, len(semesters))
		for i, semester := range semesters {
			semesterIDs[i] = semester.ID
		}
		query, args, err = sqlx.In(`SELECT id, name, content, semester_id, created_at, updated_at FROM units WHERE semester_id IN (?) ORDER BY name ASC`, semesterIDs)
		if err != nil {
			return nil, fmt.Errorf("build unit query: %w", err)
		}
		var units []models.Unit
		if err := r.db.SelectContext(ctx, &units, r.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("load course units: %w", err)
		}
		unitsBySemester := make(map[int64][]models.Unit)
		for _, unit := range units {
			unitsBySemester[unit.SemesterID] = append(unitsBySemester[unit.SemesterID], unit)
		}
		for i := range semesters {
			semesters[i].Units = unitsBySemester[semesters[i].ID]
		}
	}

	semestersByYear := make(map[int64][]models.Semester)
	for _, semester := range semesters {
		semestersByYear[semester.YearID] = append(semestersByYear[semester.YearID], semester)
	}
	for i := range years {
		years[i].Semesters = semestersByYear[years[i].ID]
	}
	course.Years = years
	return course, nil
}

// Exists checks whether a course row is present.
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1 FROM courses WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course existence: %w", err)
	}
	return true, nil
}

// Create inserts a new course and assigns the generated id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (name, description, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, course.Name, course.Description, course.CreatedAt, course.UpdatedAt).Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update replaces the mutable scalar fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = $1, description = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, course.Name, course.Description, course.UpdatedAt, course.ID); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course; the schema cascades years, semesters and units and
// nulls out document pointers.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// CatalogSummary returns per-course child counts for catalog exports.
func (r *CourseRepository) CatalogSummary(ctx context.Context) ([]models.CatalogSummary, error) {
	const query = `
		SELECT c.id AS course_id,
		       c.name AS course_name,
		       COUNT(DISTINCT y.id) AS year_count,
		       COUNT(DISTINCT s.id) AS semester_count,
		       COUNT(DISTINCT u.id) AS unit_count,
		       COUNT(DISTINCT d.id) AS document_count
		FROM courses c
		LEFT JOIN years y ON y.course_id = c.id
		LEFT JOIN semesters s ON s.year_id = y.id
		LEFT JOIN units u ON u.semester_id = s.id
		LEFT JOIN documents d ON d.course_id = c.id OR d.year_id = y.id OR d.semester_id = s.id OR d.unit_id = u.id
		GROUP BY c.id, c.name
		ORDER BY c.name ASC`
	var rows []models.CatalogSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load catalog summary: %w", err)
	}
	return rows, nil
}

func (r *CourseRepository) yearsByCourseIDs(ctx context.Context, courseIDs []int64) ([]models.Year, error) {
	query, args, err := sqlx.In(`SELECT id, year, course_id, created_at, updated_at FROM years WHERE course_id IN (?) ORDER BY year DESC`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build year query: %w", err)
	}
	var years []models.Year
	if err := r.db.SelectContext(ctx, &years, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load course years: %w", err)
	}
	return years, nil
}
