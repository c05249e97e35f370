package dto

// RegisterUserRequest is the first-login profile upsert payload.
type RegisterUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	PhotoURL string `json:"photoUrl" validate:"omitempty,url"`
}

// RoleResponse answers a role lookup. Role is empty when the user is unknown or has no role.
type RoleResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Found bool   `json:"found"`
}
