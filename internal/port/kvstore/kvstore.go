// Package kvstore defines the snapshot persistence port. The reference
// front-end kept timer state in browser local storage; here the backing
// (JSON file, NATS JetStream KV) is chosen by the composing application and
// the core depends only on this interface.
package kvstore

import "context"

// KV is the port interface for small key-value snapshots.
// Load reports ok=false when the key has never been written; the core never
// assumes anything beyond "value was/wasn't present".
type KV interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
