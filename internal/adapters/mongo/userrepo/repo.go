package userrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/userrepo"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	RoleID       string    `bson:"role_id"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Repo is a MongoDB implementation of userrepo.Repository.
type Repo struct {
	col *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(mongoadapter.UsersCollection)}
}

func (r *Repo) Create(ctx context.Context, u domain.User) error {
	_, err := r.col.InsertOne(ctx, toDoc(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Either the email index or the _id; email is the one callers
			// can actually race on.
			return userrepo.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.get(ctx, bson.M{"_id": string(id)})
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.get(ctx, bson.M{"email": email})
}

func (r *Repo) get(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, userrepo.ErrNotFound
		}
		return domain.User{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]domain.User, 0)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(doc))
	}
	return out, cur.Err()
}

func (r *Repo) Update(ctx context.Context, id domain.UserID, p userrepo.Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		set["password_hash"] = *p.PasswordHash
	}
	if p.RoleID != nil {
		set["role_id"] = string(*p.RoleID)
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userrepo.ErrEmailTaken
		}
		return err
	}
	if res.MatchedCount == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.UserID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func toDoc(u domain.User) userDoc {
	return userDoc{
		ID:           string(u.ID),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		RoleID:       string(u.RoleID),
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func fromDoc(doc userDoc) domain.User {
	return domain.User{
		ID:           domain.UserID(doc.ID),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		RoleID:       domain.RoleID(doc.RoleID),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
