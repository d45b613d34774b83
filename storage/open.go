package storage

import (
	"context"
	"fmt"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend        string
	RedisURL       string
	RedisNamespace string
	PostgresDSN    string
	MongoURL       string
	MongoDatabase  string
}

// Open constructs the backend named by opts.Backend. An empty backend means memory.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryKV(), nil
	case BackendRedis:
		return NewRedisKV(ctx, opts.RedisURL, opts.RedisNamespace)
	case BackendPostgres:
		return NewPostgresKV(opts.PostgresDSN)
	case BackendMongo:
		return NewMongoKV(ctx, opts.MongoURL, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
