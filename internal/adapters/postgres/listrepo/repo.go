package listrepo

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
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
)

// Repo is a Postgres implementation of listrepo.Repository.
//
// The grantee set lives in list_grants; every read aggregates it alongside
// the list row in a single query, so the snapshot the authorization gate
// sees is internally consistent.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectList = `
	SELECT l.id::text, l.name, l.owner_id::text, l.created_at, l.updated_at,
	       COALESCE(array_agg(g.user_id::text) FILTER (WHERE g.user_id IS NOT NULL), '{}')
	FROM lists l
	LEFT JOIN list_grants g ON g.list_id = l.id
`

func (r *Repo) Create(ctx context.Context, l domain.List) error {
	id, err := uuid.Parse(string(l.ID))
	if err != nil {
		return fmt.Errorf("invalid list id: %w", err)
	}
	owner, err := uuid.Parse(string(l.OwnerID))
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO lists (id, name, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, id, l.Name, owner, l.CreatedAt.UTC(), l.UpdatedAt.UTC())
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				switch pe.ConstraintName {
				case "lists_name_unique":
					return listrepo.ErrNameTaken
				default:
					return listrepo.ErrAlreadyExists
				}
			}
			return err
		}
		for _, g := range l.Grantees {
			gid, err := uuid.Parse(string(g))
			if err != nil {
				return fmt.Errorf("invalid grantee id: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO list_grants (list_id, user_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, id, gid); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.ListID) (domain.List, error) {
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.List{}, listrepo.ErrNotFound
	}
	l, err := scanList(r.pool.QueryRow(ctx, selectList+` WHERE l.id = $1 GROUP BY l.id`, lid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.List{}, listrepo.ErrNotFound
		}
		return domain.List{}, err
	}
	return l, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.List, error) {
	return r.list(ctx, selectList+` GROUP BY l.id ORDER BY l.name ASC`)
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.List, error) {
	oid, err := uuid.Parse(string(owner))
	if err != nil {
		return []domain.List{}, nil
	}
	return r.list(ctx, selectList+` WHERE l.owner_id = $1 GROUP BY l.id ORDER BY l.name ASC`, oid)
}

func (r *Repo) ListSharedWith(ctx context.Context, userID domain.UserID) ([]domain.List, error) {
	uid, err := uuid.Parse(string(userID))
	if err != nil {
		return []domain.List{}, nil
	}
	return r.list(ctx, selectList+`
		WHERE l.id IN (SELECT list_id FROM list_grants WHERE user_id = $1)
		GROUP BY l.id ORDER BY l.name ASC
	`, uid)
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]domain.List, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.List, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id domain.ListID, p listrepo.Patch) error {
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return listrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE lists SET
			name       = COALESCE($2, name),
			updated_at = now()
		WHERE id = $1
	`, lid, p.Name)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return listrepo.ErrNameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ListID) error {
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return listrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, lid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) AddGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return listrepo.ErrNotFound
	}
	uid, err := uuid.Parse(string(userID))
	if err != nil {
		return fmt.Errorf("invalid grantee id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO list_grants (list_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, lid, uid)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.ForeignKeyViolationCode {
			return listrepo.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) RemoveGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	lid, err := uuid.Parse(string(id))
	if err != nil {
		return listrepo.ErrNotFound
	}
	uid, err := uuid.Parse(string(userID))
	if err != nil {
		return nil
	}
	// Revoking from an absent grantee is a no-op, but the list itself must
	// exist; the grant delete and the existence check share a round trip.
	var exists bool
	err = r.pool.QueryRow(ctx, `
		WITH removed AS (
			DELETE FROM list_grants WHERE list_id = $1 AND user_id = $2
		)
		SELECT EXISTS (SELECT 1 FROM lists WHERE id = $1)
	`, lid, uid).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) RemoveGranteeEverywhere(ctx context.Context, userID domain.UserID) error {
	uid, err := uuid.Parse(string(userID))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM list_grants WHERE user_id = $1`, uid)
	return err
}

func scanList(row pgx.Row) (domain.List, error) {
	var (
		id, name, owner      string
		createdAt, updatedAt time.Time
		grantees             []string
	)
	if err := row.Scan(&id, &name, &owner, &createdAt, &updatedAt, &grantees); err != nil {
		return domain.List{}, err
	}
	l := domain.List{
		ID:        domain.ListID(id),
		Name:      name,
		OwnerID:   domain.UserID(owner),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	for _, g := range grantees {
		l.Grantees = append(l.Grantees, domain.UserID(g))
	}
	return l, nil
}
