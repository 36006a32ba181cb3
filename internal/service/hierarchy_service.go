package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/coursedocs/catalog-api/internal/models"
	appErrors "github.com/coursedocs/catalog-api/pkg/errors"
)

type hierarchyCourseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

type hierarchyYearLister interface {
	List(ctx context.Context, courseID *int64) ([]models.Year, error)
}

type hierarchySemesterLister interface {
	List(ctx context.Context, yearID *int64) ([]models.Semester, error)
}

type hierarchyUnitLister interface {
	List(ctx context.Context, semesterID *int64) ([]models.Unit, error)
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

// optionsInvalidator drops cached selector options after hierarchy writes.
// Entity services accept a nil invalidator when caching is disabled.
type optionsInvalidator interface {
	Invalidate(ctx context.Context)
}

// HierarchyServiceConfig tunes the options cache.
type HierarchyServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// HierarchyService assembles the cascading selector options used by the
// upload and edit forms. Results are cached in Redis with a short TTL since
// the payload changes rarely but is requested on every form load.
type HierarchyService struct {
	courses   hierarchyCourseLister
	years     hierarchyYearLister
	semesters hierarchySemesterLister
	units     hierarchyUnitLister
	cache     *redis.Client
	metrics   cacheMetricsRecorder
	logger    *zap.Logger
	cfg       HierarchyServiceConfig
}

// NewHierarchyService constructs the service; cache may be nil.
func NewHierarchyService(
	courses hierarchyCourseLister,
	years hierarchyYearLister,
	semesters hierarchySemesterLister,
	units hierarchyUnitLister,
	cache *redis.Client,
	metrics cacheMetricsRecorder,
	logger *zap.Logger,
	cfg HierarchyServiceConfig,
) *HierarchyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	return &HierarchyService{
		courses:   courses,
		years:     years,
		semesters: semesters,
		units:     units,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Options returns dropdown options for every requested hierarchy level.
func (s *HierarchyService) Options(ctx context.Context, query models.HierarchyOptionsQuery) (*models.HierarchyOptions, error) {
	cacheKey := s.cacheKey(query)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	options := &models.HierarchyOptions{
		Courses:   []models.HierarchyOption{},
		Years:     []models.HierarchyOption{},
		Semesters: []models.HierarchyOption{},
		Units:     []models.HierarchyOption{},
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course options")
	}
	for _, course := range courses {
		options.Courses = append(options.Courses, models.HierarchyOption{ID: course.ID, Label: course.Name})
	}

	if query.CourseID != nil {
		years, err := s.years.List(ctx, query.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year options")
		}
		for _, year := range years {
			options.Years = append(options.Years, models.HierarchyOption{ID: year.ID, Label: strconv.Itoa(year.Year)})
		}
	}

	if query.YearID != nil {
		semesters, err := s.semesters.List(ctx, query.YearID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester options")
		}
		for _, semester := range semesters {
			options.Semesters = append(options.Semesters, models.HierarchyOption{ID: semester.ID, Label: semester.Semester})
		}
	}

	if query.SemesterID != nil {
		units, err := s.units.List(ctx, query.SemesterID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unit options")
		}
		for _, unit := range units {
			options.Units = append(options.Units, models.HierarchyOption{ID: unit.ID, Label: unit.Name})
		}
	}

	s.toCache(ctx, cacheKey, options)
	return options, nil
}

// Invalidate drops every cached options payload so the next form load sees
// fresh rows. Failures are logged only; a stale entry expires with its TTL.
func (s *HierarchyService) Invalidate(ctx context.Context) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "hierarchy:options:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("hierarchy cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("hierarchy cache invalidation failed", zap.Error(err))
	}
}

func (s *HierarchyService) cacheKey(query models.HierarchyOptionsQuery) string {
	format := func(id *int64) string {
		if id == nil {
			return "-"
		}
		return strconv.FormatInt(*id, 10)
	}
	return fmt.Sprintf("hierarchy:options:%s:%s:%s",
		format(query.CourseID), format(query.YearID), format(query.SemesterID))
}

func (s *HierarchyService) fromCache(ctx context.Context, key string) *models.HierarchyOptions {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return nil
	}
	start := time.Now()
	payload, err := s.cache.Get(ctx, key).Bytes()
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("hierarchy cache read failed", zap.Error(err))
		}
		return nil
	}
	var options models.HierarchyOptions
	if err := json.Unmarshal(payload, &options); err != nil {
		s.logger.Warn("hierarchy cache payload corrupt", zap.Error(err))
		return nil
	}
	return &options
}

func (s *HierarchyService) toCache(ctx context.Context, key string, options *models.HierarchyOptions) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	payload, err := json.Marshal(options)
	if err != nil {
		return
	}
	start := time.Now()
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("hierarchy cache write failed", zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
}
