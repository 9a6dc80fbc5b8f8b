package listrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/listrepo"
)

type listDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	OwnerID   string    `bson:"owner_id"`
	Grantees  []string  `bson:"grantees"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Repo is a MongoDB implementation of listrepo.Repository.
//
// The grantee set is embedded in the list document, so GetByID is naturally
// one atomic read, and grantee membership uses the driver's $addToSet/$pull
// update operators.
type Repo struct {
	col *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(mongoadapter.ListsCollection)}
}

func (r *Repo) Create(ctx context.Context, l domain.List) error {
	_, err := r.col.InsertOne(ctx, toDoc(l))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return listrepo.ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ListID) (domain.List, error) {
	var doc listDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.List{}, listrepo.ErrNotFound
		}
		return domain.List{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repo) List(ctx context.Context) ([]domain.List, error) {
	return r.find(ctx, bson.M{})
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.List, error) {
	return r.find(ctx, bson.M{"owner_id": string(owner)})
}

func (r *Repo) ListSharedWith(ctx context.Context, userID domain.UserID) ([]domain.List, error) {
	return r.find(ctx, bson.M{"grantees": string(userID)})
}

func (r *Repo) find(ctx context.Context, filter bson.M) ([]domain.List, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]domain.List, 0)
	for cur.Next(ctx) {
		var doc listDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(doc))
	}
	return out, cur.Err()
}

func (r *Repo) Update(ctx context.Context, id domain.ListID, p listrepo.Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return listrepo.ErrNameTaken
		}
		return err
	}
	if res.MatchedCount == 0 {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ListID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) AddGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": string(id)},
		bson.M{"$addToSet": bson.M{"grantees": string(userID)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) RemoveGrantee(ctx context.Context, id domain.ListID, userID domain.UserID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": string(id)},
		bson.M{"$pull": bson.M{"grantees": string(userID)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return listrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) RemoveGranteeEverywhere(ctx context.Context, userID domain.UserID) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"grantees": string(userID)},
		bson.M{"$pull": bson.M{"grantees": string(userID)}},
	)
	return err
}

func toDoc(l domain.List) listDoc {
	doc := listDoc{
		ID:        string(l.ID),
		Name:      l.Name,
		OwnerID:   string(l.OwnerID),
		Grantees:  []string{},
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}
	for _, g := range l.Grantees {
		doc.Grantees = append(doc.Grantees, string(g))
	}
	return doc
}

func fromDoc(doc listDoc) domain.List {
	l := domain.List{
		ID:        domain.ListID(doc.ID),
		Name:      doc.Name,
		OwnerID:   domain.UserID(doc.OwnerID),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, g := range doc.Grantees {
		l.Grantees = append(l.Grantees, domain.UserID(g))
	}
	return l
}
