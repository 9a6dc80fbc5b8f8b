package itemrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
	"github.com/listly-app/shopping-list-api/internal/domain"
	"github.com/listly-app/shopping-list-api/internal/ports/out/itemrepo"
)

type itemDoc struct {
	ID        string    `bson:"_id"`
	ListID    string    `bson:"list_id"`
	Name      string    `bson:"name"`
	Done      bool      `bson:"done"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Repo is a MongoDB implementation of itemrepo.Repository.
type Repo struct {
	col *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(mongoadapter.ItemsCollection)}
}

func (r *Repo) InsertMany(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]any, 0, len(items))
	for _, it := range items {
		docs = append(docs, toDoc(it))
	}
	// Ordered inserts stop at the first failure, so a duplicate id leaves no
	// partial tail behind the failing document.
	_, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return itemrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ItemID) (domain.Item, error) {
	var doc itemDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Item{}, itemrepo.ErrNotFound
		}
		return domain.Item{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repo) ListByList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	sort := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := r.col.Find(ctx, bson.M{"list_id": string(listID)}, sort)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]domain.Item, 0)
	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(doc))
	}
	return out, cur.Err()
}

func (r *Repo) Update(ctx context.Context, id domain.ItemID, p itemrepo.Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Done != nil {
		set["done"] = *p.Done
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return itemrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ItemID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return itemrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteMany(ctx context.Context, ids []domain.ItemID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": raw}})
	return err
}

func (r *Repo) DeleteByList(ctx context.Context, listID domain.ListID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"list_id": string(listID)})
	return err
}

func toDoc(it domain.Item) itemDoc {
	return itemDoc{
		ID:        string(it.ID),
		ListID:    string(it.ListID),
		Name:      it.Name,
		Done:      it.Done,
		CreatedAt: it.CreatedAt.UTC(),
		UpdatedAt: it.UpdatedAt.UTC(),
	}
}

func fromDoc(doc itemDoc) domain.Item {
	return domain.Item{
		ID:        domain.ItemID(doc.ID),
		ListID:    domain.ListID(doc.ListID),
		Name:      doc.Name,
		Done:      doc.Done,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
