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

type mockSelectionRepo struct {
	mu      sync.Mutex
	entries map[string]*models.SelectionEntry
}

func newMockSelectionRepo(entries ...models.SelectionEntry) *mockSelectionRepo {
	m := &mockSelectionRepo{entries: map[string]*models.SelectionEntry{}}
	for i := range entries {
		e := entries[i]
		m.entries[e.ID] = &e
	}
	return m
}

func (m *mockSelectionRepo) Create(ctx context.Context, entry *models.SelectionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *mockSelectionRepo) FindByID(ctx context.Context, id string) (*models.SelectionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSelectionRepo) ListByStudent(ctx context.Context, email string) ([]models.SelectionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SelectionEntry{}
	for _, e := range m.entries {
		if strings.EqualFold(e.StudentEmail, email) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockSelectionRepo) Delete(ctx context.Context, id, studentEmail string) (models.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || !strings.EqualFold(e.StudentEmail, studentEmail) {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.entries, id)
	return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func TestSelectSnapshotsListingAndAllowsDuplicates(t *testing.T) {
	classID := uuid.NewString()
	classes := newMockClassRepo(models.ClassListing{
		ID: classID, Name: "Spanish A1", InstructorName: "Ines", Price: 50, Status: models.ClassStatusApproved,
	})
	selections := newMockSelectionRepo()
	svc := NewSelectionService(selections, classes, nil, nil)
	actor := Actor{Email: "a@x.com"}

	_, err := svc.Select(context.Background(), actor, dto.SelectClassRequest{ClassID: classID})
	require.NoError(t, err)
	_, err = svc.Select(context.Background(), actor, dto.SelectClassRequest{ClassID: classID})
	require.NoError(t, err)

	cart, err := svc.ListForStudent(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, cart, 2)
	assert.Equal(t, "Spanish A1", cart[0].Name)
	assert.Equal(t, 50.0, cart[0].Price)
	assert.Equal(t, "Ines", cart[0].InstructorName)
}

func TestSelectRejectsUnavailableClasses(t *testing.T) {
	pending := uuid.NewString()
	classes := newMockClassRepo(models.ClassListing{ID: pending, Status: models.ClassStatusPending})
	svc := NewSelectionService(newMockSelectionRepo(), classes, nil, nil)
	actor := Actor{Email: "a@x.com"}

	_, err := svc.Select(context.Background(), actor, dto.SelectClassRequest{ClassID: pending})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Select(context.Background(), actor, dto.SelectClassRequest{ClassID: uuid.NewString()})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Select(context.Background(), actor, dto.SelectClassRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRemoveChecksOwnership(t *testing.T) {
	id := uuid.NewString()
	selections := newMockSelectionRepo(models.SelectionEntry{ID: id, StudentEmail: "a@x.com"})
	svc := NewSelectionService(selections, newMockClassRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Remove(ctx, Actor{Email: "b@x.com"}, id)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	res, err := svc.Remove(ctx, Actor{Email: "A@x.com"}, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	_, err = svc.Remove(ctx, Actor{Email: "a@x.com"}, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
