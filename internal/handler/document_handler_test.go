package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/internal/models"
	"github.com/coursedocs/catalog-api/internal/service"
)

type documentRepoStub struct {
	documents map[int64]*models.Document
	nextID    int64
}

func newDocumentRepoStub() *documentRepoStub {
	return &documentRepoStub{documents: make(map[int64]*models.Document), nextID: 1}
}

func (r *documentRepoStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
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
	document.ID = r.nextID
	r.nextID++
	r.documents[document.ID] = document
	return nil
}

func (r *documentRepoStub) Update(ctx context.Context, document *models.Document) error {
	r.documents[document.ID] = document
	return nil
}

func (r *documentRepoStub) Delete(ctx context.Context, id int64) error {
	delete(r.documents, id)
	return nil
}

type allExistsStub struct{}

func (allExistsStub) Exists(ctx context.Context, id int64) (bool, error) { return true, nil }

type blobStoreStub struct {
	blobs map[string][]byte
}

func newBlobStoreStub() *blobStoreStub {
	return &blobStoreStub{blobs: make(map[string][]byte)}
}

func (s *blobStoreStub) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.blobs[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *blobStoreStub) Delete(ctx context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

func (s *blobStoreStub) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func newDocumentHandlerForTest(repo *documentRepoStub, store *blobStoreStub) *DocumentHandler {
	parents := allExistsStub{}
	svc := service.NewDocumentService(repo, parents, parents, parents, parents, store, nil, nil, nil, service.DocumentServiceConfig{})
	return NewDocumentHandler(svc)
}

func multipartUpload(t *testing.T, fields map[string]string, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestDocumentHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	handler := newDocumentHandlerForTest(repo, store)

	body, contentType := multipartUpload(t, map[string]string{
		"title":    "Syllabus",
		"courseId": "3",
	}, "syllabus.pdf", "application/pdf", "%PDF-1.4 data")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, repo.documents, 1)
	assert.Len(t, store.blobs, 1)
	assert.Contains(t, w.Body.String(), `"fileType":"PDF"`)
	assert.Contains(t, w.Body.String(), `"context":{"level":"course","id":3}`)
}

func TestDocumentHandlerUploadWithoutFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentHandlerForTest(newDocumentRepoStub(), newBlobStoreStub())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "No file"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerUploadWithoutContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentHandlerForTest(newDocumentRepoStub(), newBlobStoreStub())

	body, contentType := multipartUpload(t, map[string]string{
		"title": "Orphan",
	}, "notes.txt", "text/plain", "plain text")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_CONTEXT")
}

func TestDocumentHandlerUploadRejectsBadContextID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentHandlerForTest(newDocumentRepoStub(), newBlobStoreStub())

	body, contentType := multipartUpload(t, map[string]string{
		"title":    "Bad context",
		"courseId": "abc",
	}, "notes.txt", "text/plain", "plain text")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newDocumentRepoStub()
	store := newBlobStoreStub()
	courseID := int64(1)
	require.NoError(t, repo.Create(context.Background(), &models.Document{
		Title:    "Old notes",
		FileKey:  "documents/old-notes.pdf",
		CourseID: &courseID,
	}))
	store.blobs["documents/old-notes.pdf"] = []byte("data")
	handler := newDocumentHandlerForTest(repo, store)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/api/documents/1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.documents)
	assert.Empty(t, store.blobs)
}
