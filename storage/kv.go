// Package storage provides the key-value boundary used by the admin catalog
// editor, with in-memory, Redis, Postgres and MongoDB backends.
//
// Every call is an independent read or write. There are no transactions
// across keys and no schema versioning of stored values.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// KV is a string key-value store with prefix listing.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// ListKeys returns every key starting with prefix, sorted.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// escapeLike escapes the LIKE wildcards in s using backslash as the escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
