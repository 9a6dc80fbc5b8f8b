package rolerepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/listly-app/shopping-list-api/internal/adapters/postgres"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
)

// Repo is a Postgres implementation of rolerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, role domain.Role) error {
	id, err := uuid.Parse(string(role.ID))
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO roles (id, name) VALUES ($1, $2)
	`, id, string(role.Name))
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return rolerepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RoleID) (domain.Role, error) {
	rid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Role{}, rolerepo.ErrNotFound
	}
	return r.get(ctx, `SELECT id::text, name FROM roles WHERE id = $1`, rid)
}

func (r *Repo) GetByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	return r.get(ctx, `SELECT id::text, name FROM roles WHERE name = $1`, string(name))
}

func (r *Repo) get(ctx context.Context, query string, arg any) (domain.Role, error) {
	var (
		id   string
		name string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(&id, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Role{}, rolerepo.ErrNotFound
		}
		return domain.Role{}, err
	}
	return domain.Role{ID: domain.RoleID(id), Name: domain.RoleName(name)}, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name FROM roles ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Role, 0)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, domain.Role{ID: domain.RoleID(id), Name: domain.RoleName(name)})
	}
	return out, rows.Err()
}
