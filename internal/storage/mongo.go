package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/merchke/storefront/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores each key as a document {_id: key, value, updatedAt}.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongoBackend connects to cfg.MongoURI and pings the server.
func NewMongoBackend(ctx context.Context, cfg config.StorageConfig) (*MongoBackend, error) {
	if strings.TrimSpace(cfg.MongoURI) == "" {
		return nil, errors.New("mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	return &MongoBackend{client: client, coll: coll}, nil
}

func (m *MongoBackend) Get(ctx context.Context, key string) (string, error) {
	var entry mongoEntry
	if err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", err
	}
	return entry.Value, nil
}

func (m *MongoBackend) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now().UTC()}}
	_, err := m.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	return err
}

func (m *MongoBackend) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	update := bson.M{"$setOnInsert": bson.M{"value": value, "updatedAt": time.Now().UTC()}}
	_, err := m.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	// Two racing upserts on the same _id: the loser reports a duplicate key.
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", err
	}
	return m.Get(ctx, key)
}

func (m *MongoBackend) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
