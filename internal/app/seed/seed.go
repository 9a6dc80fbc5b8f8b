// Package seed bootstraps the reference data the system cannot run without.
package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/listly-app/shopping-list-api/internal/app/accounts"
	"github.com/listly-app/shopping-list-api/internal/app/roles"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
)

// EnsureRoles creates the "admin" and "user" roles when missing. Safe to run
// repeatedly; a concurrent seeder winning the race is not an error.
func EnsureRoles(ctx context.Context, repo rolerepo.Repository) error {
	for _, name := range []domain.RoleName{domain.RoleAdmin, domain.RoleUser} {
		_, err := repo.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, rolerepo.ErrNotFound) {
			return fmt.Errorf("look up role %s: %w", name, err)
		}
		err = repo.Create(ctx, domain.Role{ID: domain.RoleID(uuid.NewString()), Name: name})
		if err != nil && !errors.Is(err, rolerepo.ErrAlreadyExists) {
			return fmt.Errorf("create role %s: %w", name, err)
		}
	}
	return nil
}

// EnsureAdmin creates a bootstrap administrator account. An account already
// holding the email is left untouched.
func EnsureAdmin(ctx context.Context, svc *accounts.Service, rolesResolver *roles.Resolver, email, password string) error {
	adminRole, err := rolesResolver.ByName(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("resolve admin role: %w", err)
	}

	_, err = svc.CreateUser(ctx, accounts.CreateUserInput{
		Email:    email,
		Password: password,
		RoleID:   adminRole.ID,
	})
	if err != nil {
		var ae *accounts.Error
		if errors.As(err, &ae) && ae.Status == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
