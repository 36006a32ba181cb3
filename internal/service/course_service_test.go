package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type courseRepoStub struct {
	courses map[int64]*models.Course
	nextID  int64
}

func newCourseRepoStub() *courseRepoStub {
	return &courseRepoStub{courses: make(map[int64]*models.Course), nextID: 1}
}

func (r *courseRepoStub) List(ctx context.Context) ([]models.Course, error) {
	result := make([]models.Course, 0, len(r.courses))
	for _, course := range r.courses {
		result = append(result, *course)
	}
	return result, nil
}

func (r *courseRepoStub) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if course, ok := r.courses[id]; ok {
		clone := *course
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *courseRepoStub) FindTree(ctx context.Context, id int64) (*models.Course, error) {
	return r.FindByID(ctx, id)
}

func (r *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = r.nextID
	r.nextID++
	r.courses[course.ID] = course
	return nil
}

func (r *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	r.courses[course.ID] = course
	return nil
}

func (r *courseRepoStub) Delete(ctx context.Context, id int64) error {
	delete(r.courses, id)
	return nil
}

func TestCourseServiceCreateAndUpdate(t *testing.T) {
	repo := newCourseRepoStub()
	svc := NewCourseService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateCourseRequest{Name: "Computer Science"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	description := "Updated description"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCourseRequest{
		Name:        "Computer Science BSc",
		Description: &description,
	})
	require.NoError(t, err)
	assert.Equal(t, "Computer Science BSc", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, description, *updated.Description)
}

func TestCourseServiceCreateRequiresName(t *testing.T) {
	svc := NewCourseService(newCourseRepoStub(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestCourseServiceGetNotFound(t *testing.T) {
	svc := NewCourseService(newCourseRepoStub(), nil, nil, nil)

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestCourseServiceDeleteMissing(t *testing.T) {
	svc := NewCourseService(newCourseRepoStub(), nil, nil, nil)

	err := svc.Delete(context.Background(), 12)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type yearRepoStub struct {
	years  map[int64]*models.Year
	nextID int64
}

func newYearRepoStub() *yearRepoStub {
	return &yearRepoStub{years: make(map[int64]*models.Year), nextID: 1}
}

func (r *yearRepoStub) List(ctx context.Context, courseID *int64) ([]models.Year, error) {
	result := make([]models.Year, 0, len(r.years))
	for _, year := range r.years {
		if courseID == nil || year.CourseID == *courseID {
			result = append(result, *year)
		}
	}
	return result, nil
}

func (r *yearRepoStub) FindByID(ctx context.Context, id int64) (*models.Year, error) {
	if year, ok := r.years[id]; ok {
		clone := *year
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *yearRepoStub) FindDetail(ctx context.Context, id int64) (*models.Year, error) {
	return r.FindByID(ctx, id)
}

func (r *yearRepoStub) Create(ctx context.Context, year *models.Year) error {
	year.ID = r.nextID
	r.nextID++
	r.years[year.ID] = year
	return nil
}

func (r *yearRepoStub) Update(ctx context.Context, year *models.Year) error {
	r.years[year.ID] = year
	return nil
}

func (r *yearRepoStub) Delete(ctx context.Context, id int64) error {
	delete(r.years, id)
	return nil
}

func TestYearServiceCreateChecksCourse(t *testing.T) {
	repo := newYearRepoStub()
	svc := NewYearService(repo, existsStub{ids: map[int64]bool{1: true}}, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateYearRequest{Year: 2026, CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2026, created.Year)

	_, err = svc.Create(context.Background(), CreateYearRequest{Year: 2026, CourseID: 2})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrParentNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

type invalidatorStub struct {
	calls int
}

func (i *invalidatorStub) Invalidate(ctx context.Context) {
	i.calls++
}

func TestCourseServiceWritesInvalidateOptions(t *testing.T) {
	invalidator := &invalidatorStub{}
	svc := NewCourseService(newCourseRepoStub(), invalidator, nil, nil)

	created, err := svc.Create(context.Background(), CreateCourseRequest{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)

	_, err = svc.Update(context.Background(), created.ID, UpdateCourseRequest{Name: "Mathematics BSc"})
	require.NoError(t, err)
	assert.Equal(t, 2, invalidator.calls)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, 3, invalidator.calls)
}

func TestCourseServiceFailedWriteSkipsInvalidation(t *testing.T) {
	invalidator := &invalidatorStub{}
	svc := NewCourseService(newCourseRepoStub(), invalidator, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{})
	require.Error(t, err)
	assert.Zero(t, invalidator.calls)
}

func TestYearServiceCreateInvalidatesOptions(t *testing.T) {
	invalidator := &invalidatorStub{}
	svc := NewYearService(newYearRepoStub(), existsStub{ids: map[int64]bool{1: true}}, invalidator, nil, nil)

	_, err := svc.Create(context.Background(), CreateYearRequest{Year: 2026, CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)
}

func TestYearServiceUpdateMovesCourse(t *testing.T) {
	repo := newYearRepoStub()
	svc := NewYearService(repo, existsStub{ids: map[int64]bool{1: true, 2: true}}, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateYearRequest{Year: 2025, CourseID: 1})
	require.NoError(t, err)

	target := int64(2)
	updated, err := svc.Update(context.Background(), created.ID, UpdateYearRequest{Year: 2025, CourseID: &target})
	require.NoError(t, err)
	assert.Equal(t, target, updated.CourseID)
}
