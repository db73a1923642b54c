// Package localstore provides the durable key/value storage used for the
// cart snapshot and the session token. The file backend is the default; an
// in-memory backend serves tests and a Redis backend serves server-side
// embeddings of the SDK.
package localstore

import "context"

// Store is a small durable key/value surface. Get returns (nil, nil) for an
// absent key; Delete of an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
