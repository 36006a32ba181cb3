package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coursedocs/catalog-api/internal/models"
)

// SemesterRepository handles persistence for semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository instantiates a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns semesters newest first, optionally filtered by year. Each row
// carries its parent year (with course) and its units.
func (r *SemesterRepository) List(ctx context.Context, yearID *int64) ([]models.Semester, error) {
	var semesters []models.Semester
	var err error
	if yearID != nil {
		const query = `SELECT id, semester, year_id, created_at, updated_at FROM semesters WHERE year_id = $1 ORDER BY created_at DESC`
		err = r.db.SelectContext(ctx, &semesters, query, *yearID)
	} else {
		const query = `SELECT id, semester, year_id, created_at, updated_at FROM semesters ORDER BY created_at DESC`
		err = r.db.SelectContext(ctx, &semesters, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	if len(semesters) == 0 {
		return []models.Semester{}, nil
	}
	if err := r.attachRelations(ctx, semesters); err != nil {
		return nil, err
	}
	return semesters, nil
}

// FindByID loads a single semester row.
func (r *SemesterRepository) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	const query = `SELECT id, semester, year_id, created_at, updated_at FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindDetail loads a semester with its year chain and units attached.
func (r *SemesterRepository) FindDetail(ctx context.Context, id int64) (*models.Semester, error) {
	semester, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	semesters := []models.Semester{*semester}
	if err := r.attachRelations(ctx, semesters); err != nil {
		return nil, err
	}
	return &semesters[0], nil
}

// Exists checks whether a semester row is present.
func (r *SemesterRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1 FROM semesters WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check semester existence: %w", err)
	}
	return true, nil
}

// Create inserts a new semester and assigns the generated id.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	now := time.Now().UTC()
	semester.CreatedAt = now
	semester.UpdatedAt = now

	const query = `INSERT INTO semesters (semester, year_id, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, semester.Semester, semester.YearID, semester.CreatedAt, semester.UpdatedAt).Scan(&semester.ID); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a semester.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) error {
	semester.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semesters SET semester = $1, year_id = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, semester.Semester, semester.YearID, semester.UpdatedAt, semester.ID); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	return nil
}

// Delete removes a semester; units cascade.
func (r *SemesterRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	return nil
}

func (r *SemesterRepository) attachRelations(ctx context.Context, semesters []models.Semester) error {
	yearIDs := make([]int64, 0, len(semesters))
	semesterIDs := make([]int64, len(semesters))
	seen := make(map[int64]bool)
	for i, semester := range semesters {
		semesterIDs[i] = semester.ID
		if !seen[semester.YearID] {
			seen[semester.YearID] = true
			yearIDs = append(yearIDs, semester.YearID)
		}
	}

	query, args, err := sqlx.In(`
		SELECT y.id, y.year, y.course_id, y.created_at, y.updated_at,
		       c.id AS "course.id", c.name AS "course.name", c.description AS "course.description",
		       c.created_at AS "course.created_at", c.updated_at AS "course.updated_at"
		FROM years y
		JOIN courses c ON c.id = y.course_id
		WHERE y.id IN (?)`, yearIDs)
	if err != nil {
		return fmt.Errorf("build year query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("load semester years: %w", err)
	}
	defer rows.Close()

	yearsByID := make(map[int64]models.Year, len(yearIDs))
	for rows.Next() {
		var year models.Year
		year.Course = &models.Course{}
		if err := rows.StructScan(&year); err != nil {
			return fmt.Errorf("scan semester year: %w", err)
		}
		yearsByID[year.ID] = year
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate semester years: %w", err)
	}

	query, args, err = sqlx.In(`SELECT id, name, content, semester_id, created_at, updated_at FROM units WHERE semester_id IN (?) ORDER BY name ASC`, semesterIDs)
	if err != nil {
		return fmt.Errorf("build unit query: %w", err)
	}
	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load semester units: %w", err)
	}
	unitsBySemester := make(map[int64][]models.Unit)
	for _, unit := range units {
		unitsBySemester[unit.SemesterID] = append(unitsBySemester[unit.SemesterID], unit)
	}

	for i := range semesters {
		if year, ok := yearsByID[semesters[i].YearID]; ok {
			y := year
			semesters[i].Year = &y
		}
		semesters[i].Units = unitsBySemester[semesters[i].ID]
	}
	return nil
}
