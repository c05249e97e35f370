package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
)

const catalogCachePrefix = "catalog:"

type classRepository interface {
	Create(ctx context.Context, class *models.ClassListing) error
	FindByID(ctx context.Context, id string) (*models.ClassListing, error)
	ListAll(ctx context.Context) ([]models.ClassListing, error)
	ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.ClassListing, error)
	ListByInstructor(ctx context.Context, email string) ([]models.ClassListing, error)
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) (models.UpdateResult, error)
	UpdateFeedback(ctx context.Context, id, feedback string) (models.UpdateResult, error)
}

// ClassService manages the class catalog. The status-filtered storefront listing is cached.
type ClassService struct {
	repo      classRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	audit     *AuditService
	logger    *zap.Logger
}

// NewClassService constructs the service. cache may be nil.
func NewClassService(repo classRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, audit *AuditService, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, audit: audit, logger: logger}
}

// Create stores a pending listing owned by the calling instructor.
func (s *ClassService) Create(ctx context.Context, actor Actor, req dto.CreateClassRequest) (*models.InsertResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.ClassListing{
		Name:            req.Name,
		ImageURL:        req.ImageURL,
		InstructorName:  req.InstructorName,
		InstructorEmail: actor.Email,
		Price:           req.Price,
		AvailableSeat:   req.AvailableSeat,
		Status:          models.ClassStatusPending,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.InvalidateCatalog(ctx)

	s.audit.Record(ctx, actor.event(models.AuditActionClassCreate, "class", class.ID, map[string]interface{}{"name": class.Name}))
	return &models.InsertResult{Acknowledged: true, InsertedID: class.ID}, nil
}

// Get returns one listing.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassListing, error) {
	if err := checkID(id, "class"); err != nil {
		return nil, err
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// ListAll returns the full catalog regardless of status.
func (s *ClassService) ListAll(ctx context.Context) ([]models.ClassListing, error) {
	classes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// ListApproved returns listings in status, most enrolled first. The boolean reports a cache hit.
func (s *ClassService) ListApproved(ctx context.Context, status models.ClassStatus) ([]models.ClassListing, bool, error) {
	if status == "" {
		status = models.ClassStatusApproved
	}
	if !status.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown class status")
	}

	key := catalogKey(status)
	var cached []models.ClassListing
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	classes, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	s.cache.Set(ctx, key, classes, s.cacheTTL)
	return classes, false, nil
}

// ListByInstructor returns the listings owned by email.
func (s *ClassService) ListByInstructor(ctx context.Context, email string) ([]models.ClassListing, error) {
	classes, err := s.repo.ListByInstructor(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor classes")
	}
	return classes, nil
}

// SetStatus overwrites a listing's moderation status.
func (s *ClassService) SetStatus(ctx context.Context, actor Actor, id string, status models.ClassStatus) (*models.UpdateResult, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown class status")
	}
	if err := checkID(id, "class"); err != nil {
		return nil, err
	}
	result, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class status")
	}
	if result.MatchedCount == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	s.InvalidateCatalog(ctx)
	s.audit.Record(ctx, actor.event(models.AuditActionClassStatus, "class", id, map[string]interface{}{"status": status}))
	return &result, nil
}

// SetFeedback overwrites a listing's moderation feedback.
func (s *ClassService) SetFeedback(ctx context.Context, actor Actor, id string, req dto.FeedbackRequest) (*models.UpdateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	if err := checkID(id, "class"); err != nil {
		return nil, err
	}
	result, err := s.repo.UpdateFeedback(ctx, id, req.Feedback)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update feedback")
	}
	if result.MatchedCount == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	s.InvalidateCatalog(ctx)
	s.audit.Record(ctx, actor.event(models.AuditActionClassFeedback, "class", id, nil))
	return &result, nil
}

// InvalidateCatalog drops every cached storefront listing.
func (s *ClassService) InvalidateCatalog(ctx context.Context) {
	s.cache.Invalidate(ctx, catalogCachePrefix+"*")
}

func catalogKey(status models.ClassStatus) string {
	return fmt.Sprintf("%sstatus:%s", catalogCachePrefix, status)
}
