package models

import "time"

// UserRole represents the roles recognised by the access gates. An empty role is an
// implicit student.
type UserRole string

const (
	RoleUnset      UserRole = ""
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUnset, RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is an identity record keyed by email.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	PhotoURL  string    `db:"photo_url" json:"photoUrl"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserFilter narrows user listings. A nil Role lists everyone.
type UserFilter struct {
	Role *UserRole
}
