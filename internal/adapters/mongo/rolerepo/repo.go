package rolerepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/rolerepo"
)

type roleDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

// Repo is a MongoDB implementation of rolerepo.Repository.
type Repo struct {
	col *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(mongoadapter.RolesCollection)}
}

func (r *Repo) Create(ctx context.Context, role domain.Role) error {
	_, err := r.col.InsertOne(ctx, roleDoc{ID: string(role.ID), Name: string(role.Name)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rolerepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RoleID) (domain.Role, error) {
	return r.get(ctx, bson.M{"_id": string(id)})
}

func (r *Repo) GetByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	return r.get(ctx, bson.M{"name": string(name)})
}

func (r *Repo) get(ctx context.Context, filter bson.M) (domain.Role, error) {
	var doc roleDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Role{}, rolerepo.ErrNotFound
		}
		return domain.Role{}, err
	}
	return domain.Role{ID: domain.RoleID(doc.ID), Name: domain.RoleName(doc.Name)}, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Role, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]domain.Role, 0)
	for cur.Next(ctx) {
		var doc roleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domain.Role{ID: domain.RoleID(doc.ID), Name: domain.RoleName(doc.Name)})
	}
	return out, cur.Err()
}
