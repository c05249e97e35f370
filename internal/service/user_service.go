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

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindRole(ctx context.Context, email string) (models.UserRole, error)
	InsertIfAbsent(ctx context.Context, user *models.User) (bool, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) (models.UpdateResult, error)
}

// UserService handles the identity store.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	audit     *AuditService
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, audit *AuditService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, audit: audit, logger: logger}
}

// RegisterIfAbsent stores a user keyed by email. An existing record is left untouched and
// reported as appErrors.ErrAlreadyExists.
func (s *UserService) RegisterIfAbsent(ctx context.Context, req dto.RegisterUserRequest) (*models.InsertResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
		Role:     models.RoleUnset,
	}
	inserted, err := s.repo.InsertIfAbsent(ctx, user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register user")
	}
	if !inserted {
		return nil, appErrors.ErrAlreadyExists
	}
	return &models.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

// GetRole looks up a role by email. Unknown emails are reported as not found, not as an error.
func (s *UserService) GetRole(ctx context.Context, email string) (*dto.RoleResponse, error) {
	role, found, err := s.RoleOf(ctx, email)
	if err != nil {
		return nil, err
	}
	return &dto.RoleResponse{Email: email, Role: string(role), Found: found}, nil
}

// RoleOf returns the role stored for email and whether the user exists.
func (s *UserService) RoleOf(ctx context.Context, email string) (models.UserRole, bool, error) {
	role, err := s.repo.FindRole(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoleUnset, false, nil
		}
		return models.RoleUnset, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}
	return role, true, nil
}

// GetByEmail returns the profile stored for email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, models.UserFilter{})
}

// ListByRole returns users holding role.
func (s *UserService) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	return s.list(ctx, models.UserFilter{Role: &role})
}

func (s *UserService) list(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// PromoteRole overwrites a user's role.
func (s *UserService) PromoteRole(ctx context.Context, actor Actor, id string, role models.UserRole) (*models.UpdateResult, error) {
	if role == models.RoleUnset || !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if err := checkID(id, "user"); err != nil {
		return nil, err
	}

	previous, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	result, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}

	s.audit.Record(ctx, actor.event(models.AuditActionRolePromote, "user", id, map[string]interface{}{
		"email": previous.Email,
		"from":  previous.Role,
		"to":    role,
	}))
	return &result, nil
}

// AuthorizeSubject checks that caller may act on subject's records: only themselves, unless
// caller is an admin. An empty subject resolves to the caller.
func (s *UserService) AuthorizeSubject(ctx context.Context, caller, subject string) (string, error) {
	if subject == "" || strings.EqualFold(caller, subject) {
		return caller, nil
	}
	role, _, err := s.RoleOf(ctx, caller)
	if err != nil {
		return "", err
	}
	if role != models.RoleAdmin {
		return "", appErrors.Clone(appErrors.ErrForbidden, "cannot access another user's records")
	}
	return subject, nil
}
