package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type yearRepository interface {
	List(ctx context.Context, courseID *int64) ([]models.Year, error)
	FindByID(ctx context.Context, id int64) (*models.Year, error)
	FindDetail(ctx context.Context, id int64) (*models.Year, error)
	Create(ctx context.Context, year *models.Year) error
	Update(ctx context.Context, year *models.Year) error
	Delete(ctx context.Context, id int64) error
}

type courseExistsChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// CreateYearRequest describes the payload for creating an academic year.
type CreateYearRequest struct {
	Year     int   `json:"year" validate:"required,gte=1900,lte=2200"`
	CourseID int64 `json:"courseId" validate:"required"`
}

// UpdateYearRequest replaces the mutable fields of a year.
type UpdateYearRequest struct {
	Year     int    `json:"year" validate:"required,gte=1900,lte=2200"`
	CourseID *int64 `json:"courseId"`
}

// YearService orchestrates academic year workflows.
type YearService struct {
	repo      yearRepository
	courses   courseExistsChecker
	options   optionsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewYearService creates a new year service instance.
func NewYearService(repo yearRepository, courses courseExistsChecker, options optionsInvalidator, validate *validator.Validate, logger *zap.Logger) *YearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YearService{repo: repo, courses: courses, options: options, validator: validate, logger: logger}
}

// List returns years newest first, optionally scoped to one course.
func (s *YearService) List(ctx context.Context, courseID *int64) ([]models.Year, error) {
	years, err := s.repo.List(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list years")
	}
	return years, nil
}

// Get returns a year with its course and semesters.
func (s *YearService) Get(ctx context.Context, id int64) (*models.Year, error) {
	year, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}
	return year, nil
}

// Create adds a new year under an existing course.
func (s *YearService) Create(ctx context.Context, req CreateYearRequest) (*models.Year, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year payload")
	}
	if err := s.ensureCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	year := &models.Year{
		Year:     req.Year,
		CourseID: req.CourseID,
	}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create year")
	}
	s.invalidateOptions(ctx)
	return year, nil
}

// Update modifies a year, optionally moving it to another course.
func (s *YearService) Update(ctx context.Context, id int64, req UpdateYearRequest) (*models.Year, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year payload")
	}

	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}

	year.Year = req.Year
	if req.CourseID != nil && *req.CourseID != year.CourseID {
		if err := s.ensureCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
		year.CourseID = *req.CourseID
	}

	if err := s.repo.Update(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update year")
	}
	s.invalidateOptions(ctx)
	return year, nil
}

// Delete removes a year; semesters and units below it cascade.
func (s *YearService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete year")
	}
	s.invalidateOptions(ctx)
	return nil
}

func (s *YearService) invalidateOptions(ctx context.Context) {
	if s.options != nil {
		s.options.Invalidate(ctx)
	}
}

func (s *YearService) ensureCourse(ctx context.Context, courseID int64) error {
	exists, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrParentNotFound, "course not found")
	}
	return nil
}
