package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
)

type selectionRepository interface {
	Create(ctx context.Context, entry *models.SelectionEntry) error
	FindByID(ctx context.Context, id string) (*models.SelectionEntry, error)
	ListByStudent(ctx context.Context, email string) ([]models.SelectionEntry, error)
	Delete(ctx context.Context, id, studentEmail string) (models.DeleteResult, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassListing, error)
}

// SelectionService manages the per-student cart.
type SelectionService struct {
	repo      selectionRepository
	classes   classReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSelectionService constructs the service.
func NewSelectionService(repo selectionRepository, classes classReader, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SelectionService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// Select adds a class to the caller's cart, snapshotting the listing's title, image,
// instructor and price. Selecting the same class twice yields two entries.
func (s *SelectionService) Select(ctx context.Context, actor Actor, req dto.SelectClassRequest) (*models.InsertResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	if err := checkID(req.ClassID, "class"); err != nil {
		return nil, err
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Status != models.ClassStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class is not open for enrollment")
	}

	entry := &models.SelectionEntry{
		StudentEmail:   actor.Email,
		ClassID:        class.ID,
		Name:           class.Name,
		ImageURL:       class.ImageURL,
		InstructorName: class.InstructorName,
		Price:          class.Price,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select class")
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: entry.ID}, nil
}

// ListForStudent returns email's cart.
func (s *SelectionService) ListForStudent(ctx context.Context, email string) ([]models.SelectionEntry, error) {
	entries, err := s.repo.ListByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selections")
	}
	return entries, nil
}

// Remove deletes one of the caller's cart entries. Entries owned by another student are
// forbidden; missing entries are not found.
func (s *SelectionService) Remove(ctx context.Context, actor Actor, id string) (*models.DeleteResult, error) {
	if err := checkID(id, "selection"); err != nil {
		return nil, err
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	if !strings.EqualFold(entry.StudentEmail, actor.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "selection belongs to another student")
	}

	result, err := s.repo.Delete(ctx, id, actor.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove selection")
	}
	return &result, nil
}
