package users

import (
	"context"
	"fmt"

	"smartclass/db"
	"smartclass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository is the users collection as the handlers see it.
type Repository interface {
	Create(ctx context.Context, u *models.User) (models.InsertResult, error)
	List(ctx context.Context) ([]models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id string) (models.DeleteResult, error)
	Update(ctx context.Context, id string, u models.UserUpdate) (models.UpdateResult, error)
	Instructors(ctx context.Context) ([]models.User, error)
}

type MongoRepository struct {
	users *mongo.Collection
}

func NewMongoRepository(store *db.Store) *MongoRepository {
	return &MongoRepository{users: store.Users}
}

func (m *MongoRepository) Create(ctx context.Context, u *models.User) (models.InsertResult, error) {
	res, err := m.users.InsertOne(ctx, u)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	return models.FromInsert(res), nil
}

func (m *MongoRepository) List(ctx context.Context) ([]models.User, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepository) Instructors(ctx context.Context) ([]models.User, error) {
	return m.find(ctx, bson.M{"role": models.RoleInstructor})
}

func (m *MongoRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := m.users.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (m *MongoRepository) ByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := db.ObjectID(id)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MongoRepository) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := m.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, db.NotFound(err)
	}
	return &u, nil
}

func (m *MongoRepository) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := db.ObjectID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	res, err := m.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete user: %w", err)
	}
	return models.FromDelete(res), nil
}

// Update overwrites the editable profile fields. Unknown ids are
// models.ErrNotFound; nothing is upserted.
func (m *MongoRepository) Update(ctx context.Context, id string, u models.UserUpdate) (models.UpdateResult, error) {
	oid, err := db.ObjectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := m.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updateDoc(u)})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.UpdateResult{}, models.ErrNotFound
	}
	return models.FromUpdate(res), nil
}

func updateDoc(u models.UserUpdate) bson.M {
	var skills any
	if len(u.Skills) > 0 {
		skills = u.Skills
	}
	return bson.M{
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Option,
		"address":  u.Address,
		"phone":    u.Phone,
		"about":    u.About,
		"photoUrl": u.PhotoURL,
		"skills":   skills,
	}
}

// RoleByEmail satisfies middleware.RoleLookup.
func (m *MongoRepository) RoleByEmail(ctx context.Context, email string) (models.Role, error) {
	var u struct {
		Role models.Role `bson:"role"`
	}
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		return "", db.NotFound(err)
	}
	return u.Role, nil
}
