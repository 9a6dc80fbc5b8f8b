package itemrepo

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
	"github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
)

// Repo is a Postgres implementation of itemrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// InsertMany inserts the batch inside one transaction: all or nothing.
func (r *Repo) InsertMany(ctx context.Context, items []domain.Item) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, it := range items {
			id, err := uuid.Parse(string(it.ID))
			if err != nil {
				return fmt.Errorf("invalid item id: %w", err)
			}
			listID, err := uuid.Parse(string(it.ListID))
			if err != nil {
				return fmt.Errorf("invalid list id: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO items (id, list_id, name, done, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id, listID, it.Name, it.Done, it.CreatedAt.UTC(), it.UpdatedAt.UTC())
			if err != nil {
				if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
					return itemrepo.ErrAlreadyExists
				}
				return err
			}
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.ItemID) (domain.Item, error) {
	iid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Item{}, itemrepo.ErrNotFound
	}
	it, err := scanItem(r.pool.QueryRow(ctx, `
		SELECT id::text, list_id::text, name, done, created_at, updated_at
		FROM items WHERE id = $1
	`, iid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Item{}, itemrepo.ErrNotFound
		}
		return domain.Item{}, err
	}
	return it, nil
}

func (r *Repo) ListByList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	lid, err := uuid.Parse(string(listID))
	if err != nil {
		return []domain.Item{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, list_id::text, name, done, created_at, updated_at
		FROM items WHERE list_id = $1 ORDER BY created_at ASC, id ASC
	`, lid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id domain.ItemID, p itemrepo.Patch) error {
	iid, err := uuid.Parse(string(id))
	if err != nil {
		return itemrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE items SET
			name       = COALESCE($2, name),
			done       = COALESCE($3, done),
			updated_at = now()
		WHERE id = $1
	`, iid, p.Name, p.Done)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return itemrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ItemID) error {
	iid, err := uuid.Parse(string(id))
	if err != nil {
		return itemrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, iid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return itemrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteMany(ctx context.Context, ids []domain.ItemID) error {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		iid, err := uuid.Parse(string(id))
		if err != nil {
			continue
		}
		parsed = append(parsed, iid)
	}
	if len(parsed) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = ANY($1)`, parsed)
	return err
}

func (r *Repo) DeleteByList(ctx context.Context, listID domain.ListID) error {
	lid, err := uuid.Parse(string(listID))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM items WHERE list_id = $1`, lid)
	return err
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var (
		id, listID           string
		name                 string
		done                 bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &listID, &name, &done, &createdAt, &updatedAt); err != nil {
		return domain.Item{}, err
	}
	return domain.Item{
		ID:        domain.ItemID(id),
		ListID:    domain.ListID(listID),
		Name:      name,
		Done:      done,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
