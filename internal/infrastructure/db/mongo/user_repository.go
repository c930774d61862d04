package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stiarchives/portal/internal/core/domain"
)

const (
	usersCollection = "registrants"
	usersDocumentID = "users"
)

// UserRepository stores the whole collection as one document so reads and
// writes keep the same shape as the JSON file store.
type UserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, coll: db.Collection(usersCollection)}
}

type usersDocument struct {
	ID      string              `bson:"_id"`
	Records []domain.UserRecord `bson:"records"`
}

func (r *UserRepository) LoadAll(ctx context.Context) ([]domain.UserRecord, error) {
	var doc usersDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": usersDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.UserRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find users: %w", domain.ErrStorage, err)
	}
	if doc.Records == nil {
		doc.Records = []domain.UserRecord{}
	}
	for i := range doc.Records {
		doc.Records[i].NormalizeState()
	}
	return doc.Records, nil
}

func (r *UserRepository) SaveAll(ctx context.Context, records []domain.UserRecord) error {
	if records == nil {
		records = []domain.UserRecord{}
	}
	doc := usersDocument{ID: usersDocumentID, Records: records}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": usersDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: replace users: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.db.Client().Ping(ctx, nil); err != nil {
		return err
	}
	return r.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
