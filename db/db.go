package db

import (
	"context"
	"fmt"
	"log/slog"

	"smartclass/config"
	"smartclass/globals"

	"github.com/avast/retry-go/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store holds the shared client and one handle per collection.
// It is built once at startup and passed to every handler set.
type Store struct {
	Client   *mongo.Client
	Database *mongo.Database

	Users    *mongo.Collection
	Classes  *mongo.Collection
	Cart     *mongo.Collection
	Payments *mongo.Collection
	Enrolled *mongo.Collection
	Applied  *mongo.Collection

	transactions bool
}

// Connect dials MongoDB, retrying the initial ping, and wires the collections.
func Connect(ctx context.Context, cfg config.Mongo, log *slog.Logger) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	var client *mongo.Client
	err := retry.Do(
		func() error {
			c, err := mongo.Connect(ctx, clientOpts)
			if err != nil {
				return err
			}
			if err := c.Ping(ctx, readpref.Primary()); err != nil {
				_ = c.Disconnect(ctx)
				return err
			}
			client = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(cfg.ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("mongo connect failed, retrying", slog.Uint64("attempt", uint64(n+1)), slog.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	log.Info("pinged deployment, connected to MongoDB", slog.String("database", cfg.Database))
	return New(client, cfg.Database, cfg.Transactions), nil
}

// New wires a Store around an existing client.
func New(client *mongo.Client, dbName string, transactions bool) *Store {
	database := client.Database(dbName)
	return &Store{
		Client:       client,
		Database:     database,
		Users:        database.Collection(globals.UsersCollection),
		Classes:      database.Collection(globals.ClassesCollection),
		Cart:         database.Collection(globals.CartCollection),
		Payments:     database.Collection(globals.PaymentsCollection),
		Enrolled:     database.Collection(globals.EnrolledCollection),
		Applied:      database.Collection(globals.AppliedCollection),
		transactions: transactions,
	}
}

// WithTransaction runs fn inside a multi-document transaction when the deployment
// supports them (replica set or sharded cluster). Otherwise fn runs directly.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	sess, err := s.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the queries rely on. The unique
// transactionId index backs settlement idempotency.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	plan := map[*mongo.Collection][]mongo.IndexModel{
		s.Payments: {
			{
				Keys:    bson.D{{Key: "transactionId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_transaction"),
			},
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "date", Value: -1}}},
		},
		s.Users:   {{Keys: bson.D{{Key: "email", Value: 1}}}},
		s.Classes: {{Keys: bson.D{{Key: "status", Value: 1}}}, {Keys: bson.D{{Key: "instructorEmail", Value: 1}}}},
		s.Cart:    {{Keys: bson.D{{Key: "userMail", Value: 1}, {Key: "classId", Value: 1}}}},
		s.Enrolled: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}}},
			{
				Keys: bson.D{{Key: "transactionId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_enrollment_transaction").
					SetPartialFilterExpression(bson.M{"transactionId": bson.M{"$type": "string"}}),
			},
		},
		s.Applied: {{Keys: bson.D{{Key: "email", Value: 1}}}},
	}

	for coll, idxs := range plan {
		if _, err := coll.Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}
