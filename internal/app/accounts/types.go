package accounts

import "github.com/listly-app/shopping-list-api/internal/domain"

type RegisterInput struct {
	Email    string
	Password string
}

type CreateUserInput struct {
	Email    string
	Password string
	RoleID   domain.RoleID
}

// UpdateUserInput is a patch: nil fields are left untouched.
// RoleID may only be set when the caller's decision was elevated.
type UpdateUserInput struct {
	Email    *string
	Password *string
	RoleID   *domain.RoleID
}

type LoginInput struct {
	Email    string
	Password string
}
