package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/language-lab-api/internal/models"
)

const userColumns = `id, email, name, photo_url, role, created_at, updated_at`

// UserRepository provides database access for the identity store.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, compared case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindRole projects only the role column.
func (r *UserRepository) FindRole(ctx context.Context, email string) (models.UserRole, error) {
	const query = `SELECT role FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var role models.UserRole
	if err := r.db.GetContext(ctx, &role, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoleUnset, err
		}
		return models.RoleUnset, fmt.Errorf("find user role: %w", err)
	}
	return role, nil
}

// InsertIfAbsent stores the user unless the email is already taken. The unique index on
// LOWER(email) makes this race free; inserted is false when a record already existed.
func (r *UserRepository) InsertIfAbsent(ctx context.Context, user *models.User) (inserted bool, err error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, name, photo_url, role, created_at, updated_at)
VALUES (:id, :email, :name, :photo_url, :role, :created_at, :updated_at)
ON CONFLICT DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user rows affected: %w", err)
	}
	return affected == 1, nil
}

// List returns users, optionally filtered by role, oldest first.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if filter.Role != nil {
		query += ` WHERE role = $1`
		args = append(args, *filter.Role)
	}
	query += ` ORDER BY created_at ASC`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole unconditionally overwrites a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) (models.UpdateResult, error) {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, role, time.Now().UTC())
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update user role: %w", err)
	}
	return updateResult(res)
}

func updateResult(res sql.Result) (models.UpdateResult, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("rows affected: %w", err)
	}
	return models.UpdateResult{Acknowledged: true, MatchedCount: affected, ModifiedCount: affected}, nil
}

func deleteResult(res sql.Result) (models.DeleteResult, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("rows affected: %w", err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: affected}, nil
}
