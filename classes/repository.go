package classes

import (
	"context"
	"fmt"

	"smartclass/db"
	"smartclass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Filter narrows a class listing. Zero fields are ignored.
type Filter struct {
	Status          models.ClassStatus
	InstructorEmail string
}

func (f Filter) bson() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.InstructorEmail != "" {
		q["instructorEmail"] = f.InstructorEmail
	}
	return q
}

// Details are the instructor-editable fields of a class. Nil fields keep
// their stored value.
type Details struct {
	Name           *string
	Description    *string
	Price          *float64
	AvailableSeats *int
	VideoLink      *string
}

// bson is the $set document of an edit. Edited classes go back to review.
func (d Details) bson() bson.M {
	set := bson.M{"status": models.StatusPending}
	if d.Name != nil {
		set["name"] = *d.Name
	}
	if d.Description != nil {
		set["description"] = *d.Description
	}
	if d.Price != nil {
		set["price"] = *d.Price
	}
	if d.AvailableSeats != nil {
		set["availableSeats"] = *d.AvailableSeats
	}
	if d.VideoLink != nil {
		set["videoLink"] = *d.VideoLink
	}
	return set
}

type Repository interface {
	Create(ctx context.Context, c *models.Class) (models.InsertResult, error)
	Find(ctx context.Context, f Filter) ([]models.Class, error)
	ByID(ctx context.Context, id string) (*models.Class, error)
	SetStatus(ctx context.Context, id string, change models.StatusChange) (models.UpdateResult, error)
	Update(ctx context.Context, id string, d Details) (models.UpdateResult, error)
}

type MongoRepository struct {
	classes *mongo.Collection
}

func NewMongoRepository(store *db.Store) *MongoRepository {
	return &MongoRepository{classes: store.Classes}
}

func (m *MongoRepository) Create(ctx context.Context, c *models.Class) (models.InsertResult, error) {
	res, err := m.classes.InsertOne(ctx, c)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert class: %w", err)
	}
	return models.FromInsert(res), nil
}

func (m *MongoRepository) Find(ctx context.Context, f Filter) ([]models.Class, error) {
	cur, err := m.classes.Find(ctx, f.bson())
	if err != nil {
		return nil, fmt.Errorf("find classes: %w", err)
	}
	defer cur.Close(ctx)

	classes := []models.Class{}
	if err := cur.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

func (m *MongoRepository) ByID(ctx context.Context, id string) (*models.Class, error) {
	oid, err := db.ObjectID(id)
	if err != nil {
		return nil, err
	}
	var c models.Class
	if err := m.classes.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		return nil, db.NotFound(err)
	}
	return &c, nil
}

func (m *MongoRepository) SetStatus(ctx context.Context, id string, change models.StatusChange) (models.UpdateResult, error) {
	return m.set(ctx, id, bson.M{
		"status": change.Status,
		"reason": change.Reason,
	})
}

// Update replaces the editable fields and sends the class back to review.
func (m *MongoRepository) Update(ctx context.Context, id string, d Details) (models.UpdateResult, error) {
	return m.set(ctx, id, d.bson())
}

func (m *MongoRepository) set(ctx context.Context, id string, fields bson.M) (models.UpdateResult, error) {
	oid, err := db.ObjectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := m.classes.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update class: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.UpdateResult{}, models.ErrNotFound
	}
	return models.FromUpdate(res), nil
}
