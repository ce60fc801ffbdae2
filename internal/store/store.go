package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Namespaces used by the client.
const (
	NamespaceSession = "session"
	NamespacePush    = "push"
)

// KV is the small application-scoped key-value store that backs the session
// and the cached push token. Values are plain strings.
type KV interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	// SetMany writes every pair or none of them.
	SetMany(ctx context.Context, namespace string, values map[string]string) error
	Delete(ctx context.Context, namespace, key string) error
	// Clear drops every key of the namespace.
	Clear(ctx context.Context, namespace string) error
	Close() error
}
