package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursedocs/catalog-api/internal/models"
	"github.com/coursedocs/catalog-api/pkg/blob"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	FindByID(ctx context.Context, id int64) (*models.Document, error)
	FindDetail(ctx context.Context, id int64) (*models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id int64) error
}

type unitExistsChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type uploadMetricsRecorder interface {
	RecordUpload(sizeBytes int64)
}

// DocumentUpload carries the file stream and its client-declared metadata.
type DocumentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// CreateDocumentRequest describes the multipart fields of an upload.
type CreateDocumentRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	CourseID    *int64  `json:"courseId"`
	YearID      *int64  `json:"yearId"`
	SemesterID  *int64  `json:"semesterId"`
	UnitID      *int64  `json:"unitId"`
}

// UpdateDocumentRequest replaces document metadata and its context pointers.
// The stored file is immutable. The context set is replaced as a whole, so an
// absent pointer clears that level.
type UpdateDocumentRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	CourseID    *int64  `json:"courseId"`
	YearID      *int64  `json:"yearId"`
	SemesterID  *int64  `json:"semesterId"`
	UnitID      *int64  `json:"unitId"`
}

// DocumentServiceConfig bounds uploads.
type DocumentServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

// DocumentService is the gateway for document uploads: it validates the
// metadata and file, writes the blob, and records the metadata row.
type DocumentService struct {
	repo      documentRepository
	courses   courseExistsChecker
	years     yearExistsChecker
	semesters semesterExistsChecker
	units     unitExistsChecker
	store     blob.Store
	metrics   uploadMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentServiceConfig
	mimeSet   map[string]struct{}
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(
	repo documentRepository,
	courses courseExistsChecker,
	years yearExistsChecker,
	semesters semesterExistsChecker,
	units unitExistsChecker,
	store blob.Store,
	metrics uploadMetricsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg DocumentServiceConfig,
) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
			"text/markdown",
		}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &DocumentService{
		repo:      repo,
		courses:   courses,
		years:     years,
		semesters: semesters,
		units:     units,
		store:     store,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// List returns documents newest first, narrowed by any context filters.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	documents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, nil
}

// Get returns a document with its context rows.
func (s *DocumentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	document, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return document, nil
}

// Upload validates metadata and file, stores the blob, then records the row.
// The blob is removed again if the insert fails.
func (s *DocumentService) Upload(ctx context.Context, req CreateDocumentRequest, upload DocumentUpload) (*models.Document, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}

	document := &models.Document{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		YearID:      req.YearID,
		SemesterID:  req.SemesterID,
		UnitID:      req.UnitID,
	}
	if !document.HasContext() {
		return nil, appErrors.ErrMissingContext
	}
	if err := s.ensureParents(ctx, document); err != nil {
		return nil, err
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSize))
	}
	mimeType := strings.ToLower(strings.TrimSpace(upload.MimeType))
	if _, allowed := s.mimeSet[mimeType]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedType,
			fmt.Sprintf("file type %q is not supported", upload.MimeType))
	}

	key := s.generateKey(upload.Filename)
	url, err := s.store.Put(ctx, key, mimeType, upload.Content, upload.Size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status,
			"failed to store document file: "+err.Error())
	}

	document.Filename = upload.Filename
	document.FileURL = url
	document.FileKey = key
	document.FileType = documentTypeFor(mimeType)
	document.FileSize = upload.Size

	if err := s.repo.Create(ctx, document); err != nil {
		if cleanupErr := s.store.Delete(ctx, key); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned blob", zap.String("key", key), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}
	if s.metrics != nil {
		s.metrics.RecordUpload(upload.Size)
	}
	document.Context = document.ResolveContext()
	return document, nil
}

// Update replaces metadata and the context set of a document.
func (s *DocumentService) Update(ctx context.Context, id int64, req UpdateDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}

	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	document.Title = req.Title
	document.Description = req.Description
	document.CourseID = req.CourseID
	document.YearID = req.YearID
	document.SemesterID = req.SemesterID
	document.UnitID = req.UnitID

	if !document.HasContext() {
		return nil, appErrors.ErrMissingContext
	}
	if err := s.ensureParents(ctx, document); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, document); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}
	document.Context = document.ResolveContext()
	return document, nil
}

// Delete removes the blob first (best-effort) and then the metadata row.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if err := s.store.Delete(ctx, document.FileKey); err != nil {
		s.logger.Warn("failed to delete document blob",
			zap.Int64("document_id", document.ID),
			zap.String("key", document.FileKey),
			zap.Error(err))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	return nil
}

func (s *DocumentService) ensureParents(ctx context.Context, document *models.Document) error {
	check := func(checker interface {
		Exists(ctx context.Context, id int64) (bool, error)
	}, id *int64, label string) error {
		if id == nil {
			return nil
		}
		exists, err := checker.Exists(ctx, *id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check "+label)
		}
		if !exists {
			return appErrors.Clone(appErrors.ErrParentNotFound, label+" not found")
		}
		return nil
	}

	if err := check(s.courses, document.CourseID, "course"); err != nil {
		return err
	}
	if err := check(s.years, document.YearID, "year"); err != nil {
		return err
	}
	if err := check(s.semesters, document.SemesterID, "semester"); err != nil {
		return err
	}
	return check(s.units, document.UnitID, "unit")
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

func (s *DocumentService) generateKey(filename string) string {
	sanitized := unsafeKeyChars.ReplaceAllString(filename, "_")
	short := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("documents/%d-%s-%s", time.Now().UnixMilli(), short, sanitized)
}

func documentTypeFor(mimeType string) models.DocumentType {
	switch mimeType {
	case "application/pdf":
		return models.DocumentTypePDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return models.DocumentTypeDOCX
	case "text/plain":
		return models.DocumentTypeTXT
	case "text/markdown":
		return models.DocumentTypeMD
	default:
		return models.DocumentTypeOther
	}
}
