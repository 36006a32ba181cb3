package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type semesterRepository interface {
	List(ctx context.Context, yearID *int64) ([]models.Semester, error)
	FindByID(ctx context.Context, id int64) (*models.Semester, error)
	FindDetail(ctx context.Context, id int64) (*models.Semester, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	Delete(ctx context.Context, id int64) error
}

type yearExistsChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// CreateSemesterRequest describes the payload for creating a semester.
type CreateSemesterRequest struct {
	Semester string `json:"semester" validate:"required"`
	YearID   int64  `json:"yearId" validate:"required"`
}

// UpdateSemesterRequest replaces the mutable fields of a semester.
type UpdateSemesterRequest struct {
	Semester string `json:"semester" validate:"required"`
	YearID   *int64 `json:"yearId"`
}

// SemesterService orchestrates semester workflows.
type SemesterService struct {
	repo      semesterRepository
	years     yearExistsChecker
	options   optionsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService creates a new semester service instance.
func NewSemesterService(repo semesterRepository, years yearExistsChecker, options optionsInvalidator, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, years: years, options: options, validator: validate, logger: logger}
}

// List returns semesters newest first, optionally scoped to one year.
func (s *SemesterService) List(ctx context.Context, yearID *int64) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// Get returns a semester with its year chain and units.
func (s *SemesterService) Get(ctx context.Context, id int64) (*models.Semester, error) {
	semester, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// Create adds a new semester under an existing year.
func (s *SemesterService) Create(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	if err := s.ensureYear(ctx, req.YearID); err != nil {
		return nil, err
	}

	semester := &models.Semester{
		Semester: req.Semester,
		YearID:   req.YearID,
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	s.invalidateOptions(ctx)
	return semester, nil
}

// Update modifies a semester, optionally moving it to another year.
func (s *SemesterService) Update(ctx context.Context, id int64, req UpdateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}

	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	semester.Semester = req.Semester
	if req.YearID != nil && *req.YearID != semester.YearID {
		if err := s.ensureYear(ctx, *req.YearID); err != nil {
			return nil, err
		}
		semester.YearID = *req.YearID
	}

	if err := s.repo.Update(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}
	s.invalidateOptions(ctx)
	return semester, nil
}

// Delete removes a semester; units below it cascade.
func (s *SemesterService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete semester")
	}
	s.invalidateOptions(ctx)
	return nil
}

func (s *SemesterService) invalidateOptions(ctx context.Context) {
	if s.options != nil {
		s.options.Invalidate(ctx)
	}
}

func (s *SemesterService) ensureYear(ctx context.Context, yearID int64) error {
	exists, err := s.years.Exists(ctx, yearID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check year")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrParentNotFound, "year not found")
	}
	return nil
}
