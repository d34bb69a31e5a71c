package pay

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

// CartSelector picks the cart entries cleared by a settlement. Entries are
// always limited to the payer.
type CartSelector struct {
	UserMail string
	ClassID  string   // set when a single class was bought from its page
	ClassIDs []string // otherwise the whole checkout
}

func (s CartSelector) bson() bson.M {
	if s.ClassID != "" {
		return bson.M{"classId": s.ClassID, "userMail": s.UserMail}
	}
	return bson.M{"classId": bson.M{"$in": s.ClassIDs}, "userMail": s.UserMail}
}

// Ledger is the storage a settlement touches.
type Ledger interface {
	PaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error)
	Classes(ctx context.Context, ids []primitive.ObjectID) ([]models.Class, error)
	InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error)
	Enroll(ctx context.Context, ids []primitive.ObjectID, transactionID string) (models.UpdateResult, error)
	InsertEnrollment(ctx context.Context, e *models.Enrollment) (models.InsertResult, error)
	ClearCart(ctx context.Context, sel CartSelector) (models.DeleteResult, error)
	MarkSettled(ctx context.Context, transactionID string) error
	History(ctx context.Context, email string) ([]models.Payment, error)
	CountHistory(ctx context.Context, email string) (int64, error)
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MongoLedger struct {
	store *db.Store
}

func NewMongoLedger(store *db.Store) *MongoLedger {
	return &MongoLedger{store: store}
}

func (l *MongoLedger) PaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	err := l.store.Payments.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&p)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &p, nil
}

func (l *MongoLedger) Classes(ctx context.Context, ids []primitive.ObjectID) ([]models.Class, error) {
	cur, err := l.store.Classes.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find classes: %w", err)
	}
	classes := []models.Class{}
	if err := cur.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

// InsertPayment fails with models.ErrDuplicate when the transaction id was
// already recorded.
func (l *MongoLedger) InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error) {
	res, err := l.store.Payments.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return models.InsertResult{}, models.ErrDuplicate
	}
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert payment: %w", err)
	}
	return models.FromInsert(res), nil
}

// Enroll takes one seat from every class and counts one more student in it.
// Each class remembers the transactions it was enrolled under, so running
// Enroll again for the same transaction leaves the counters alone.
func (l *MongoLedger) Enroll(ctx context.Context, ids []primitive.ObjectID, transactionID string) (models.UpdateResult, error) {
	res, err := l.store.Classes.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "settledTx": bson.M{"$ne": transactionID}},
		bson.M{
			"$inc":  bson.M{"totalEnrolled": 1, "availableSeats": -1},
			"$push": bson.M{"settledTx": transactionID},
		},
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update enrolled classes: %w", err)
	}
	return models.FromUpdate(res), nil
}

// InsertEnrollment writes the enrollment of a transaction once.
func (l *MongoLedger) InsertEnrollment(ctx context.Context, e *models.Enrollment) (models.InsertResult, error) {
	res, err := l.store.Enrolled.UpdateOne(ctx,
		bson.M{"transactionId": e.TransactionID},
		bson.M{"$setOnInsert": e},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert enrollment: %w", err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: res.UpsertedID}, nil
}

func (l *MongoLedger) ClearCart(ctx context.Context, sel CartSelector) (models.DeleteResult, error) {
	res, err := l.store.Cart.DeleteMany(ctx, sel.bson())
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("clear cart: %w", err)
	}
	return models.FromDelete(res), nil
}

func (l *MongoLedger) MarkSettled(ctx context.Context, transactionID string) error {
	res, err := l.store.Payments.UpdateOne(ctx,
		bson.M{"transactionId": transactionID},
		bson.M{"$set": bson.M{"status": models.PaymentSettled}},
	)
	if err != nil {
		return fmt.Errorf("mark payment settled: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (l *MongoLedger) History(ctx context.Context, email string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := l.store.Payments.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	payments := []models.Payment{}
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return payments, nil
}

func (l *MongoLedger) CountHistory(ctx context.Context, email string) (int64, error) {
	n, err := l.store.Payments.CountDocuments(ctx, bson.M{"userEmail": email})
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}

func (l *MongoLedger) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return l.store.WithTransaction(ctx, fn)
}
