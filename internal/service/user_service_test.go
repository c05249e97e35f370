package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMockUserRepo(users ...models.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindRole(ctx context.Context, email string) (models.UserRole, error) {
	u, err := m.FindByEmail(ctx, email)
	if err != nil {
		return models.RoleUnset, err
	}
	return u.Role, nil
}

func (m *mockUserRepo) InsertIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	if _, err := m.FindByEmail(ctx, user.Email); err == nil {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	m.users[user.ID] = &copied
	return true, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, u := range m.users {
		if filter.Role == nil || u.Role == *filter.Role {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	u.Role = role
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type mockAuditRepo struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var actions []string
	for _, l := range m.logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func TestRegisterIfAbsentIsIdempotent(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, nil, nil, nil)

	res, err := svc.RegisterIfAbsent(context.Background(), dto.RegisterUserRequest{Email: "a@x.com", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)
	assert.NotEmpty(t, res.InsertedID)

	_, err = svc.RegisterIfAbsent(context.Background(), dto.RegisterUserRequest{Email: "A@X.com", Name: "Someone else"})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyExists)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestRegisterIfAbsentValidatesEmail(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, nil, nil)

	_, err := svc.RegisterIfAbsent(context.Background(), dto.RegisterUserRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGetRoleReportsAbsence(t *testing.T) {
	repo := newMockUserRepo(models.User{ID: "u1", Email: "i@x.com", Role: models.RoleInstructor})
	svc := NewUserService(repo, nil, nil, nil)

	found, err := svc.GetRole(context.Background(), "i@x.com")
	require.NoError(t, err)
	assert.Equal(t, dto.RoleResponse{Email: "i@x.com", Role: "instructor", Found: true}, *found)

	missing, err := svc.GetRole(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.False(t, missing.Found)
	assert.Empty(t, missing.Role)
}

func TestListByRole(t *testing.T) {
	repo := newMockUserRepo(
		models.User{ID: "u1", Email: "i@x.com", Role: models.RoleInstructor},
		models.User{ID: "u2", Email: "s@x.com", Role: models.RoleStudent},
	)
	svc := NewUserService(repo, nil, nil, nil)

	instructors, err := svc.ListByRole(context.Background(), models.RoleInstructor)
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	assert.Equal(t, "i@x.com", instructors[0].Email)

	_, err = svc.ListByRole(context.Background(), "wizard")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPromoteRoleAudits(t *testing.T) {
	userID := uuid.NewString()
	repo := newMockUserRepo(models.User{ID: userID, Email: "s@x.com"})
	audits := &mockAuditRepo{}
	svc := NewUserService(repo, nil, NewAuditService(audits, nil), nil)

	res, err := svc.PromoteRole(context.Background(), Actor{Email: "admin@x.com"}, userID, models.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	role, _, err := svc.RoleOf(context.Background(), "s@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, role)
	assert.Equal(t, []string{models.AuditActionRolePromote}, audits.actions())
	assert.Equal(t, "admin@x.com", audits.logs[0].ActorEmail)
}

func TestPromoteRoleErrors(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, nil, nil)

	_, err := svc.PromoteRole(context.Background(), Actor{}, "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.PromoteRole(context.Background(), Actor{}, "missing", models.RoleUnset)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthorizeSubject(t *testing.T) {
	repo := newMockUserRepo(
		models.User{ID: "u1", Email: "admin@x.com", Role: models.RoleAdmin},
		models.User{ID: "u2", Email: "s@x.com", Role: models.RoleStudent},
	)
	svc := NewUserService(repo, nil, nil, nil)
	ctx := context.Background()

	subject, err := svc.AuthorizeSubject(ctx, "s@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, "s@x.com", subject)

	subject, err = svc.AuthorizeSubject(ctx, "s@x.com", "S@x.com")
	require.NoError(t, err)
	assert.Equal(t, "s@x.com", subject)

	_, err = svc.AuthorizeSubject(ctx, "s@x.com", "other@x.com")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	subject, err = svc.AuthorizeSubject(ctx, "admin@x.com", "s@x.com")
	require.NoError(t, err)
	assert.Equal(t, "s@x.com", subject)
}
