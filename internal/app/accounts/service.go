package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/listly-app/shopping-list-api/internal/app/graph"
	"github.com/listly-app/shopping-list-api/internal/app/roles"
	"github.com/listly-app/shopping-list-api/internal/domain"
	clockport "github.com/listly-app/shopping-list-api/internal/ports/out/clock"
	"github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

type Service struct {
	users   userrepo.Repository
	roles   *roles.Resolver
	mutator *graph.Mutator
	clock   clockport.Clock

	newUserID  func() domain.UserID
	bcryptCost int
}

func NewService(users userrepo.Repository, rolesResolver *roles.Resolver, mutator *graph.Mutator, clk clockport.Clock) *Service {
	return &Service{
		users:   users,
		roles:   rolesResolver,
		mutator: mutator,
		clock:   clk,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
		bcryptCost: bcrypt.DefaultCost,
	}
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

// SetBcryptCostForTest lowers the hashing cost to keep test runs fast.
func (s *Service) SetBcryptCostForTest(cost int) {
	if cost >= bcrypt.MinCost {
		s.bcryptCost = cost
	}
}

// Register creates an account on the public registration path. The default
// "user" role is assigned; a missing default role is a deployment fault and
// propagates as-is.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, &Error{Status: http.StatusConflict, Code: "USER_ALREADY_EXISTS", Message: "user exists"}
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return domain.User{}, err
	}

	role, err := s.roles.ByName(ctx, domain.RoleUser)
	if err != nil {
		return domain.User{}, err
	}

	return s.create(ctx, email, in.Password, role.ID)
}

// CreateUser is the administrative creation path: the role is caller-chosen
// and must exist.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, &Error{Status: http.StatusConflict, Code: "USER_ALREADY_EXISTS", Message: "user exists"}
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return domain.User{}, err
	}

	if _, err := s.roles.ByID(ctx, in.RoleID); err != nil {
		return domain.User{}, &Error{Status: http.StatusNotFound, Code: "ROLE_NOT_FOUND", Message: "role does not exist"}
	}

	return s.create(ctx, email, in.Password, in.RoleID)
}

func (s *Service) create(ctx context.Context, email, password string, roleID domain.RoleID) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now()
	u := domain.User{
		ID:           s.newUserID(),
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return domain.User{}, &Error{Status: http.StatusConflict, Code: "USER_ALREADY_EXISTS", Message: "user exists"}
		}
		return domain.User{}, err
	}
	return u, nil
}

// ListUsers returns every user. An empty directory is reported as
// NO_USERS with a no-content status: the query itself was valid.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(us) == 0 {
		return nil, &Error{Status: http.StatusNoContent, Code: "NO_USERS", Message: "no users"}
	}
	return us, nil
}

func (s *Service) GetUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		}
		return domain.User{}, err
	}
	return u, nil
}

// UpdateUser patches a user record. Role reassignment requires the caller's
// authorization decision to have been elevated; anyone else attempting it is
// refused outright, not silently stripped.
func (s *Service) UpdateUser(ctx context.Context, id domain.UserID, in UpdateUserInput, elevated bool) (domain.User, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		}
		return domain.User{}, err
	}

	p := userrepo.Patch{}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		p.Email = &email
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return domain.User{}, err
		}
		h := string(hash)
		p.PasswordHash = &h
	}
	if in.RoleID != nil {
		if !elevated {
			return domain.User{}, &Error{Status: http.StatusForbidden, Code: "ROLE_CHANGE_FORBIDDEN", Message: "only an administrator may reassign roles"}
		}
		if _, err := s.roles.ByID(ctx, *in.RoleID); err != nil {
			return domain.User{}, &Error{Status: http.StatusNotFound, Code: "ROLE_NOT_FOUND", Message: "role does not exist"}
		}
		p.RoleID = in.RoleID
	}

	if err := s.users.Update(ctx, id, p); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrNotFound):
			return domain.User{}, &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		case errors.Is(err, userrepo.ErrEmailTaken):
			return domain.User{}, &Error{Status: http.StatusConflict, Code: "EMAIL_TAKEN", Message: "email already in use"}
		default:
			return domain.User{}, err
		}
	}
	return s.users.GetByID(ctx, id)
}

// DeleteUser removes the user and cascades over everything it owns.
func (s *Service) DeleteUser(ctx context.Context, id domain.UserID) error {
	if _, err := s.mutator.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, graph.ErrUserNotFound) {
			return &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "user does not exist"}
		}
		return err
	}
	return nil
}

// Login checks the credentials and returns the account. Every failure,
// unknown email or wrong password alike, is the same opaque error.
func (s *Service) Login(ctx context.Context, in LoginInput) (domain.User, error) {
	invalid := &Error{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}

	u, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, invalid
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return domain.User{}, invalid
	}
	return u, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
