package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type documentRepoStub struct {
	documents  map[int64]*models.Document
	nextID     int64
	createErr  error
	lastFilter models.DocumentFilter
}

func newDocumentRepoStub() *documentRepoStub {
	return &documentRepoStub{documents: make(map[int64]*models.Document), nextID: 1}
}

func (r *documentRepoStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	r.lastFilter = filter
	result := make([]models.Document, 0, len(r.documents))
	for _, document := range r.documents {
		result = append(result, *document)
	}
	return result, nil
}

func (r *documentRepoStub) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	if document, ok := r.documents[id]; ok {
		clone := *document
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *documentRepoStub) FindDetail(ctx context.Context, id int64) (*models.Document, error) {
	return r.FindByID(ctx, id)
}

func (r *documentRepoStub) Create(ctx context.Context, document *models.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	document.ID = r.nextID
	r.nextID++
	r.documents[document.ID] = document
	return nil
}

func (r *documentRepoStub) Update(ctx context.Context, document *models.Document) error {
	if _, ok := r.documents[document.ID]; !ok {
		return sql.ErrNoRows
	}
	r.documents[document.ID] = document
	return nil
}

func (r *documentRepoStub) Delete(ctx context.Context, id int64) error {
	delete(r.documents, id)
	return nil
}

type existsStub struct {
	ids map[int64]bool
}

func (e existsStub) Exists(ctx context.Context, id int64) (bool, error) {
	return e.ids[id], nil
}

type blobStoreStub struct {
	blobs     map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newBlobStoreStub() *blobStoreStub {
	return &blobStoreStub{blobs: make(map[string][]byte)}
}

func (s *blobStoreStub) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.blobs[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *blobStoreStub) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, key)
	return nil
}

func (s *blobStoreStub) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func newDocumentServiceForTest(repo *documentRepoStub, store *blobStoreStub, parents existsStub) *DocumentService {
	return NewDocumentService(repo, parents, parents, parents, parents, store, nil, nil, nil, DocumentServiceConfig{
		MaxFileSize: 1024,
	})
}

func uploadOf(content string) DocumentUpload {
	return DocumentUpload{
		Filename: "lecture notes.pdf",
		Size:     int64(len(content)),
		MimeType: "application/pdf",
		Content:  bytes.NewReader([]byte(content)),
	}
}

func TestDocumentServiceUpload(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	courseID := int64(1)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true}})

	document, err := svc.Upload(context.Background(), CreateDocumentRequest{
		Title:    "Lecture notes",
		CourseID: &courseID,
	}, uploadOf("%PDF-1.4 content"))
	require.NoError(t, err)

	assert.Equal(t, models.DocumentTypePDF, document.FileType)
	assert.Equal(t, "lecture notes.pdf", document.Filename)
	assert.True(t, strings.HasPrefix(document.FileKey, "documents/"), "key %q", document.FileKey)
	assert.NotContains(t, document.FileKey, " ")
	assert.Contains(t, document.FileURL, document.FileKey)
	require.NotNil(t, document.Context)
	assert.Equal(t, "course", document.Context.Level)
	assert.Equal(t, courseID, document.Context.ID)
	assert.Len(t, store.blobs, 1)
}

func TestDocumentServiceUploadFileTypes(t *testing.T) {
	courseID := int64(1)
	cases := []struct {
		name     string
		filename string
		mimeType string
		want     models.DocumentType
	}{
		{"pdf", "slides.pdf", "application/pdf", models.DocumentTypePDF},
		{"docx", "essay.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", models.DocumentTypeDOCX},
		{"plain text", "notes.txt", "text/plain", models.DocumentTypeTXT},
		{"markdown", "readme.md", "text/markdown", models.DocumentTypeMD},
		{"unmapped type", "archive.zip", "application/zip", models.DocumentTypeOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewDocumentService(
				newDocumentRepoStub(),
				existsStub{ids: map[int64]bool{courseID: true}},
				existsStub{}, existsStub{}, existsStub{},
				newBlobStoreStub(), nil, nil, nil,
				DocumentServiceConfig{
					MaxFileSize: 1024,
					// zip widens the default list so the fallback branch is reachable
					AllowedMIMEs: []string{
						"application/pdf",
						"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
						"text/plain",
						"text/markdown",
						"application/zip",
					},
				},
			)

			document, err := svc.Upload(context.Background(), CreateDocumentRequest{
				Title:    "Typed upload",
				CourseID: &courseID,
			}, DocumentUpload{
				Filename: tc.filename,
				Size:     4,
				MimeType: tc.mimeType,
				Content:  bytes.NewReader([]byte("data")),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, document.FileType)
		})
	}
}

func TestDocumentServiceUploadRequiresContext(t *testing.T) {
	svc := newDocumentServiceForTest(newDocumentRepoStub(), newBlobStoreStub(), existsStub{})

	_, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "No home"}, uploadOf("data"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingContext.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceUploadParentMissing(t *testing.T) {
	svc := newDocumentServiceForTest(newDocumentRepoStub(), newBlobStoreStub(), existsStub{})
	unitID := int64(77)

	_, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Orphan", UnitID: &unitID}, uploadOf("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrParentNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestDocumentServiceUploadSizeLimit(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	courseID := int64(1)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true}})

	oversized := uploadOf(strings.Repeat("x", 1025))
	_, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Big", CourseID: &courseID}, oversized)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErrors.FromError(err).Code)

	// A file of exactly the limit passes.
	atLimit := uploadOf(strings.Repeat("x", 1024))
	_, err = svc.Upload(context.Background(), CreateDocumentRequest{Title: "At limit", CourseID: &courseID}, atLimit)
	require.NoError(t, err)
}

func TestDocumentServiceUploadRejectsMime(t *testing.T) {
	courseID := int64(1)
	svc := newDocumentServiceForTest(newDocumentRepoStub(), newBlobStoreStub(), existsStub{ids: map[int64]bool{courseID: true}})

	upload := uploadOf("GIF89a")
	upload.MimeType = "image/gif"
	_, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Animation", CourseID: &courseID}, upload)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedType.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceUploadStorageFailure(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	store.putErr = fmt.Errorf("bucket unreachable")
	courseID := int64(1)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true}})

	_, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Notes", CourseID: &courseID}, uploadOf("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStorageFailure.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "bucket unreachable")
	assert.Empty(t, repo.documents)
}

func TestDocumentServiceUploadCleansUpBlobOnInsertFailure(t *testing.T) {
	repo := newDocumentRepoStub()
	repo.createErr = fmt.Errorf("insert failed")
	store := newBlobStoreStub()
	courseID := int64(1)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true}})

	_, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Doomed", CourseID: &courseID}, uploadOf("data"))
	require.Error(t, err)
	assert.Empty(t, store.blobs, "blob must be removed after a failed insert")
	assert.Len(t, store.deleted, 1)
}

func TestDocumentServiceUpdateReplacesContext(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	courseID, yearID := int64(1), int64(2)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true, yearID: true}})

	created, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Notes", CourseID: &courseID}, uploadOf("data"))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateDocumentRequest{Title: "Notes v2", YearID: &yearID})
	require.NoError(t, err)
	assert.Nil(t, updated.CourseID)
	require.NotNil(t, updated.YearID)
	require.NotNil(t, updated.Context)
	assert.Equal(t, "year", updated.Context.Level)

	// Dropping every pointer is rejected.
	_, err = svc.Update(context.Background(), created.ID, UpdateDocumentRequest{Title: "Homeless"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingContext.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceDeleteRemovesBlobFirst(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	courseID := int64(1)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true}})

	created, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Notes", CourseID: &courseID}, uploadOf("data"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, store.blobs)
	assert.Empty(t, repo.documents)
}

func TestDocumentServiceDeleteSurvivesBlobFailure(t *testing.T) {
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	store.deleteErr = fmt.Errorf("storage unavailable")
	courseID := int64(1)
	svc := newDocumentServiceForTest(repo, store, existsStub{ids: map[int64]bool{courseID: true}})

	created, err := svc.Upload(context.Background(), CreateDocumentRequest{Title: "Notes", CourseID: &courseID}, uploadOf("data"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.documents, "row is removed even when the blob delete fails")
}

func TestDocumentServiceGetNotFound(t *testing.T) {
	svc := newDocumentServiceForTest(newDocumentRepoStub(), newBlobStoreStub(), existsStub{})

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
