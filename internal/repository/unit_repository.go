package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coursedocs/catalog-api/internal/models"
)

// UnitRepository handles persistence for units.
type UnitRepository struct {
	db *sqlx.DB
}

// NewUnitRepository instantiates a unit repository.
func NewUnitRepository(db *sqlx.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// List returns units ordered by name, optionally filtered by semester.
func (r *UnitRepository) List(ctx context.Context, semesterID *int64) ([]models.Unit, error) {
	var units []models.Unit
	var err error
	if semesterID != nil {
		const query = `SELECT id, name, content, semester_id, created_at, updated_at FROM units WHERE semester_id = $1 ORDER BY name ASC`
		err = r.db.SelectContext(ctx, &units, query, *semesterID)
	} else {
		const query = `SELECT id, name, content, semester_id, created_at, updated_at FROM units ORDER BY name ASC`
		err = r.db.SelectContext(ctx, &units, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	if len(units) == 0 {
		return []models.Unit{}, nil
	}
	if err := r.attachSemesters(ctx, units); err != nil {
		return nil, err
	}
	return units, nil
}

// FindByID loads a single unit row.
func (r *UnitRepository) FindByID(ctx context.Context, id int64) (*models.Unit, error) {
	const query = `SELECT id, name, content, semester_id, created_at, updated_at FROM units WHERE id = $1`
	var unit models.Unit
	if err := r.db.GetContext(ctx, &unit, query, id); err != nil {
		return nil, err
	}
	return &unit, nil
}

// FindDetail loads a unit with its semester chain and attached documents.
func (r *UnitRepository) FindDetail(ctx context.Context, id int64) (*models.Unit, error) {
	unit, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	units := []models.Unit{*unit}
	if err := r.attachSemesters(ctx, units); err != nil {
		return nil, err
	}

	const query = `SELECT id, title, description, filename, file_url, file_key, file_type, file_size,
		course_id, year_id, semester_id, unit_id, created_at, updated_at
		FROM documents WHERE unit_id = $1 ORDER BY created_at DESC`
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, id); err != nil {
		return nil, fmt.Errorf("load unit documents: %w", err)
	}
	units[0].Documents = documents
	return &units[0], nil
}

// Exists checks whether a unit row is present.
func (r *UnitRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1 FROM units WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check unit existence: %w", err)
	}
	return true, nil
}

// Create inserts a new unit and assigns the generated id.
func (r *UnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	now := time.Now().UTC()
	unit.CreatedAt = now
	unit.UpdatedAt = now

	const query = `INSERT INTO units (name, content, semester_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, unit.Name, unit.Content, unit.SemesterID, unit.CreatedAt, unit.UpdatedAt).Scan(&unit.ID); err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a unit.
func (r *UnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	unit.UpdatedAt = time.Now().UTC()
	const query = `UPDATE units SET name = $1, content = $2, semester_id = $3, updated_at = $4 WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, unit.Name, unit.Content, unit.SemesterID, unit.UpdatedAt, unit.ID); err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	return nil
}

// Delete removes a unit; documents pointing at it keep their row with the
// pointer nulled.
func (r *UnitRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return nil
}

func (r *UnitRepository) attachSemesters(ctx context.Context, units []models.Unit) error {
	semesterIDs := make([]int64, 0, len(units))
	seen := make(map[int64]bool)
	for _, unit := range units {
		if !seen[unit.SemesterID] {
			seen[unit.SemesterID] = true
			semesterIDs = append(semesterIDs, unit.SemesterID)
		}
	}

	query, args, err := sqlx.In(`
		SELECT s.id, s.semester, s.year_id, s.created_at, s.updated_at,
		       y.id AS "year.id", y.year AS "year.year", y.course_id AS "year.course_id",
		       y.created_at AS "year.created_at", y.updated_at AS "year.updated_at",
		       c.id AS "year.course.id", c.name AS "year.course.name", c.description AS "year.course.description",
		       c.created_at AS "year.course.created_at", c.updated_at AS "year.course.updated_at"
		FROM semesters s
		JOIN years y ON y.id = s.year_id
		JOIN courses c ON c.id = y.course_id
		WHERE s.id IN (?)`, semesterIDs)
	if err != nil {
		return fmt.Errorf("build semester query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("load unit semesters: %w", err)
	}
	defer rows.Close()

	semestersByID := make(map[int64]models.Semester, len(semesterIDs))
	for rows.Next() {
		var semester models.Semester
		if err := rows.StructScan(&semester); err != nil {
			return fmt.Errorf("scan unit semester: %w", err)
		}
		semestersByID[semester.ID] = semester
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate unit semesters: %w", err)
	}

	for i := range units {
		if semester, ok := semestersByID[units[i].SemesterID]; ok {
			s := semester
			units[i].Semester = &s
		}
	}
	return nil
}
