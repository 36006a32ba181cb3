package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/internal/models"
)

func TestDocumentRepositoryListFilteredByUnit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	unitID := int64(42)
	docColumns := []string{"id", "title", "description", "filename", "file_url", "file_key", "file_type", "file_size",
		"course_id", "year_id", "semester_id", "unit_id", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE unit_id = \\$1 ORDER BY created_at DESC").
		WithArgs(unitID).
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow(int64(1), "Lecture notes", nil, "notes.pdf", "https://cdn.example.com/documents/notes.pdf",
				"documents/notes.pdf", "PDF", int64(2048), nil, nil, nil, unitID, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, content, semester_id, created_at, updated_at FROM units WHERE id IN ($1)")).
		WithArgs(unitID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "content", "semester_id", "created_at", "updated_at"}).
			AddRow(unitID, "Algorithms", nil, int64(9), now, now))

	documents, err := repo.List(context.Background(), models.DocumentFilter{UnitID: &unitID})
	require.NoError(t, err)
	require.Len(t, documents, 1)
	require.NotNil(t, documents[0].Unit)
	assert.Equal(t, "Algorithms", documents[0].Unit.Name)
	require.NotNil(t, documents[0].Context)
	assert.Equal(t, "unit", documents[0].Context.Level)
	assert.Equal(t, unitID, documents[0].Context.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	courseID := int64(3)
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs("Syllabus", sqlmock.AnyArg(), "syllabus.pdf", sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.DocumentTypePDF, int64(1024), courseID, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(15)))

	document := &models.Document{
		Title:    "Syllabus",
		Filename: "syllabus.pdf",
		FileURL:  "https://cdn.example.com/documents/syllabus.pdf",
		FileKey:  "documents/syllabus.pdf",
		FileType: models.DocumentTypePDF,
		FileSize: 1024,
		CourseID: &courseID,
	}
	require.NoError(t, repo.Create(context.Background(), document))
	assert.Equal(t, int64(15), document.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}
