package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type unitRepository interface {
	List(ctx context.Context, semesterID *int64) ([]models.Unit, error)
	FindByID(ctx context.Context, id int64) (*models.Unit, error)
	FindDetail(ctx context.Context, id int64) (*models.Unit, error)
	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, id int64) error
}

type semesterExistsChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// CreateUnitRequest describes the payload for creating a unit.
type CreateUnitRequest struct {
	Name       string  `json:"name" validate:"required"`
	Content    *string `json:"content"`
	SemesterID int64   `json:"semesterId" validate:"required"`
}

// UpdateUnitRequest replaces the mutable fields of a unit.
type UpdateUnitRequest struct {
	Name       string  `json:"name" validate:"required"`
	Content    *string `json:"content"`
	SemesterID *int64  `json:"semesterId"`
}

// UnitService orchestrates unit workflows.
type UnitService struct {
	repo      unitRepository
	semesters semesterExistsChecker
	options   optionsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUnitService creates a new unit service instance.
func NewUnitService(repo unitRepository, semesters semesterExistsChecker, options optionsInvalidator, validate *validator.Validate, logger *zap.Logger) *UnitService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{repo: repo, semesters: semesters, options: options, validator: validate, logger: logger}
}

// List returns units by name, optionally scoped to one semester.
func (s *UnitService) List(ctx context.Context, semesterID *int64) ([]models.Unit, error) {
	units, err := s.repo.List(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list units")
	}
	return units, nil
}

// Get returns a unit with its semester chain and attached documents.
func (s *UnitService) Get(ctx context.Context, id int64) (*models.Unit, error) {
	unit, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}
	return unit, nil
}

// Create adds a new unit under an existing semester.
func (s *UnitService) Create(ctx context.Context, req CreateUnitRequest) (*models.Unit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unit payload")
	}
	if err := s.ensureSemester(ctx, req.SemesterID); err != nil {
		return nil, err
	}

	unit := &models.Unit{
		Name:       req.Name,
		Content:    req.Content,
		SemesterID: req.SemesterID,
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create unit")
	}
	s.invalidateOptions(ctx)
	return unit, nil
}

// Update modifies a unit, optionally moving it to another semester.
func (s *UnitService) Update(ctx context.Context, id int64, req UpdateUnitRequest) (*models.Unit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unit payload")
	}

	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}

	unit.Name = req.Name
	unit.Content = req.Content
	if req.SemesterID != nil && *req.SemesterID != unit.SemesterID {
		if err := s.ensureSemester(ctx, *req.SemesterID); err != nil {
			return nil, err
		}
		unit.SemesterID = *req.SemesterID
	}

	if err := s.repo.Update(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update unit")
	}
	s.invalidateOptions(ctx)
	return unit, nil
}

// Delete removes a unit. Documents pointing at it stay, with the pointer
// nulled by the schema.
func (s *UnitService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "unit not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unit")
	}
	s.invalidateOptions(ctx)
	return nil
}

func (s *UnitService) invalidateOptions(ctx context.Context) {
	if s.options != nil {
		s.options.Invalidate(ctx)
	}
}

func (s *UnitService) ensureSemester(ctx context.Context, semesterID int64) error {
	exists, err := s.semesters.Exists(ctx, semesterID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrParentNotFound, "semester not found")
	}
	return nil
}
