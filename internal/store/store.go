// Package store implements the service persistence contracts on MongoDB.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"lifelink-api-server/internal/service"
)

const (
	collUsers         = "users"
	collInventory     = "inventory"
	collRequests      = "requests"
	collDonorRequests = "donor_requests"
	collEmergencies   = "emergency_requests"
	collCamps         = "camps"
)

// Store bundles the Mongo-backed implementations of every persistence
// contract. One Store serves all services.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials Mongo and pings the primary before returning a Store.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, err
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// New wraps an already connected database, used by integration tests.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// WithTransaction runs fn inside a Mongo session transaction. The session
// context flows through fn, so every store call made with it joins the
// transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// mapErr translates driver errors to the service taxonomy.
func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return service.ErrNotFound
	}
	return err
}
