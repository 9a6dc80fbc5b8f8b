package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/listly-app/shopping-list-api/internal/adapters/postgres"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

// Repo is a Postgres implementation of userrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, u domain.User) error {
	id, err := uuid.Parse(string(u.ID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	roleID, err := uuid.Parse(string(u.RoleID))
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, u.Email, u.PasswordHash, roleID, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "users_email_unique":
				return userrepo.ErrEmailTaken
			default:
				return userrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.User{}, userrepo.ErrNotFound
	}
	return r.get(ctx, `
		SELECT id::text, email, password_hash, role_id::text, created_at, updated_at
		FROM users WHERE id = $1
	`, uid)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.get(ctx, `
		SELECT id::text, email, password_hash, role_id::text, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
}

func (r *Repo) get(ctx context.Context, query string, arg any) (domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, userrepo.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, email, password_hash, role_id::text, created_at, updated_at
		FROM users ORDER BY email ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id domain.UserID, p userrepo.Patch) error {
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.ErrNotFound
	}

	var roleID *uuid.UUID
	if p.RoleID != nil {
		rid, err := uuid.Parse(string(*p.RoleID))
		if err != nil {
			return fmt.Errorf("invalid role id: %w", err)
		}
		roleID = &rid
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			email         = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			role_id       = COALESCE($4, role_id),
			updated_at    = now()
		WHERE id = $1
	`, uid, p.Email, p.PasswordHash, roleID)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return userrepo.ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.UserID) error {
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		id, email, hash, roleID string
		createdAt, updatedAt    time.Time
	)
	if err := row.Scan(&id, &email, &hash, &roleID, &createdAt, &updatedAt); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           domain.UserID(id),
		Email:        email,
		PasswordHash: hash,
		RoleID:       domain.RoleID(roleID),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
