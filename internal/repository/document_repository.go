package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coursedocs/catalog-api/internal/models"
)

const documentColumns = `id, title, description, filename, file_url, file_key, file_type, file_size,
	course_id, year_id, semester_id, unit_id, created_at, updated_at`

// DocumentRepository handles persistence for document metadata. File bytes
// live in blob storage; only keys and URLs are stored here.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository instantiates a document repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns documents newest first, narrowed by any context filters set.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	addCondition := func(column string, value *int64) {
		if value != nil {
			args = append(args, *value)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	addCondition("course_id", filter.CourseID)
	addCondition("year_id", filter.YearID)
	addCondition("semester_id", filter.SemesterID)
	addCondition("unit_id", filter.UnitID)

	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(documents) == 0 {
		return []models.Document{}, nil
	}
	if err := r.attachRelations(ctx, documents); err != nil {
		return nil, err
	}
	return documents, nil
}

// FindByID loads a single document row without relations.
func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		return nil, err
	}
	return &document, nil
}

// FindDetail loads a document with its context rows attached.
func (r *DocumentRepository) FindDetail(ctx context.Context, id int64) (*models.Document, error) {
	document, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	documents := []models.Document{*document}
	if err := r.attachRelations(ctx, documents); err != nil {
		return nil, err
	}
	return &documents[0], nil
}

// Create inserts document metadata and assigns the generated id.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	now := time.Now().UTC()
	document.CreatedAt = now
	document.UpdatedAt = now

	const query = `INSERT INTO documents
		(title, description, filename, file_url, file_key, file_type, file_size,
		 course_id, year_id, semester_id, unit_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		document.Title, document.Description, document.Filename,
		document.FileURL, document.FileKey, document.FileType, document.FileSize,
		document.CourseID, document.YearID, document.SemesterID, document.UnitID,
		document.CreatedAt, document.UpdatedAt,
	).Scan(&document.ID)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Update replaces the metadata and context pointers of a document. The stored
// file itself is immutable; re-uploading means a new document.
func (r *DocumentRepository) Update(ctx context.Context, document *models.Document) error {
	document.UpdatedAt = time.Now().UTC()
	const query = `UPDATE documents SET
		title = $1, description = $2,
		course_id = $3, year_id = $4, semester_id = $5, unit_id = $6,
		updated_at = $7
		WHERE id = $8`
	_, err := r.db.ExecContext(ctx, query,
		document.Title, document.Description,
		document.CourseID, document.YearID, document.SemesterID, document.UnitID,
		document.UpdatedAt, document.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes a document row. Callers are responsible for removing the
// blob first.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) attachRelations(ctx context.Context, documents []models.Document) error {
	courseIDs := collectIDs(documents, func(d models.Document) *int64 { return d.CourseID })
	yearIDs := collectIDs(documents, func(d models.Document) *int64 { return d.YearID })
	semesterIDs := collectIDs(documents, func(d models.Document) *int64 { return d.SemesterID })
	unitIDs := collectIDs(documents, func(d models.Document) *int64 { return d.UnitID })

	coursesByID := make(map[int64]models.Course)
	if len(courseIDs) > 0 {
		query, args, err := sqlx.In(`SELECT id, name, description, created_at, updated_at FROM courses WHERE id IN (?)`, courseIDs)
		if err != nil {
			return fmt.Errorf("build course query: %w", err)
		}
		var courses []models.Course
		if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("load document courses: %w", err)
		}
		for _, course := range courses {
			coursesByID[course.ID] = course
		}
	}

	yearsByID := make(map[int64]models.Year)
	if len(yearIDs) > 0 {
		query, args, err := sqlx.In(`SELECT id, year, course_id, created_at, updated_at FROM years WHERE id IN (?)`, yearIDs)
		if err != nil {
			return fmt.Errorf("build year query: %w", err)
		}
		var years []models.Year
		if err := r.db.SelectContext(ctx, &years, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("load document years: %w", err)
		}
		for _, year := range years {
			yearsByID[year.ID] = year
		}
	}

	semestersByID := make(map[int64]models.Semester)
	if len(semesterIDs) > 0 {
		query, args, err := sqlx.In(`SELECT id, semester, year_id, created_at, updated_at FROM semesters WHERE id IN (?)`, semesterIDs)
		if err != nil {
			return fmt.Errorf("build semester query: %w", err)
		}
		var semesters []models.Semester
		if err := r.db.SelectContext(ctx, &semesters, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("load document semesters: %w", err)
		}
		for _, semester := range semesters {
			semestersByID[semester.ID] = semester
		}
	}

	unitsByID := make(map[int64]models.Unit)
	if len(unitIDs) > 0 {
		query, args, err := sqlx.In(`SELECT id, name, content, semester_id, created_at, updated_at FROM units WHERE id IN (?)`, unitIDs)
		if err != nil {
			return fmt.Errorf("build unit query: %w", err)
		}
		var units []models.Unit
		if err := r.db.SelectContext(ctx, &units, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("load document units: %w", err)
		}
		for _, unit := range units {
			unitsByID[unit.ID] = unit
		}
	}

	for i := range documents {
		if documents[i].CourseID != nil {
			if course, ok := coursesByID[*documents[i].CourseID]; ok {
				c := course
				documents[i].Course = &c
			}
		}
		if documents[i].YearID != nil {
			if year, ok := yearsByID[*documents[i].YearID]; ok {
				y := year
				documents[i].Year = &y
			}
		}
		if documents[i].SemesterID != nil {
			if semester, ok := semestersByID[*documents[i].SemesterID]; ok {
				s := semester
				documents[i].Semester = &s
			}
		}
		if documents[i].UnitID != nil {
			if unit, ok := unitsByID[*documents[i].UnitID]; ok {
				u := unit
				documents[i].Unit = &u
			}
		}
		documents[i].Context = documents[i].ResolveContext()
	}
	return nil
}

func collectIDs(documents []models.Document, pick func(models.Document) *int64) []int64 {
	seen := make(map[int64]bool)
	ids := make([]int64, 0, len(documents))
	for _, document := range documents {
		if id := pick(document); id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	return ids
}
