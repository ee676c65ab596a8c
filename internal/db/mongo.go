package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when neither the URI nor the caller names a database.
const DefaultMongoDatabase = "car_cosmetics"

const mongoConnectTimeout = 10 * time.Second

// MongoDatabaseName picks the database to use: name when set, else the path
// of the connection string, else DefaultMongoDatabase.
func MongoDatabaseName(uri, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return DefaultMongoDatabase, nil
}

// ConnectMongo opens a client, verifies it with a ping and returns the
// selected database.
func ConnectMongo(ctx context.Context, uri, name string, log logr.Logger) (*mongo.Client, *mongo.Database, error) {
	dbName, err := MongoDatabaseName(uri, name)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("connected to mongo", "database", dbName)
	return client, client.Database(dbName), nil
}
