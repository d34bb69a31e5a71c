package cart

import (
	"context"
	"fmt"

	"smartclass/db"
	"smartclass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Add(ctx context.Context, item *models.CartItem) (models.InsertResult, error)
	Item(ctx context.Context, classID, email string) (*models.CartItem, error)
	ClassIDs(ctx context.Context, email string) ([]string, error)
	Classes(ctx context.Context, ids []primitive.ObjectID) ([]models.Class, error)
	Remove(ctx context.Context, classID, email string) (models.DeleteResult, error)
}

type MongoRepository struct {
	cart    *mongo.Collection
	classes *mongo.Collection
}

func NewMongoRepository(store *db.Store) *MongoRepository {
	return &MongoRepository{cart: store.Cart, classes: store.Classes}
}

func (m *MongoRepository) Add(ctx context.Context, item *models.CartItem) (models.InsertResult, error) {
	res, err := m.cart.InsertOne(ctx, item)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert cart item: %w", err)
	}
	return models.FromInsert(res), nil
}

// Item returns the class id of one (class, user) entry, or models.ErrNotFound.
func (m *MongoRepository) Item(ctx context.Context, classID, email string) (*models.CartItem, error) {
	opts := options.FindOne().SetProjection(bson.M{"classId": 1})
	var item models.CartItem
	err := m.cart.FindOne(ctx, bson.M{"classId": classID, "userMail": email}, opts).Decode(&item)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &item, nil
}

func (m *MongoRepository) ClassIDs(ctx context.Context, email string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"classId": 1})
	cur, err := m.cart.Find(ctx, bson.M{"userMail": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	defer cur.Close(ctx)

	var items []models.CartItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ClassID)
	}
	return ids, nil
}

func (m *MongoRepository) Classes(ctx context.Context, ids []primitive.ObjectID) ([]models.Class, error) {
	classes := []models.Class{}
	if len(ids) == 0 {
		return classes, nil
	}
	cur, err := m.classes.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find cart classes: %w", err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode cart classes: %w", err)
	}
	return classes, nil
}

// Remove deletes a single matching entry; duplicates stay behind.
func (m *MongoRepository) Remove(ctx context.Context, classID, email string) (models.DeleteResult, error) {
	res, err := m.cart.DeleteOne(ctx, bson.M{"classId": classID, "userMail": email})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete cart item: %w", err)
	}
	return models.FromDelete(res), nil
}
