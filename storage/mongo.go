package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "kv_entries"

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoKV keeps one document per key with the key as _id.
type MongoKV struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoKV(ctx context.Context, uri, database string) (*MongoKV, error) {
	if uri == "" {
		return nil, errors.New("mongo url is required")
	}
	if database == "" {
		return nil, errors.New("mongo database is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoKV{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

func (m *MongoKV) Get(ctx context.Context, key string) (string, error) {
	var entry mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("mongo get %s: %w", key, err)
	}
	return entry.Value, nil
}

func (m *MongoKV) Set(ctx context.Context, key, value string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo set %s: %w", key, err)
	}
	return nil
}

func (m *MongoKV) Delete(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

func (m *MongoKV) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}
	cur, err := m.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo list %s: %w", prefix, err)
	}
	var entries []mongoEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("mongo list %s: %w", prefix, err)
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MongoKV) Close() error {
	return m.client.Disconnect(context.Background())
}
