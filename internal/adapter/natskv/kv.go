// Package natskv implements the kvstore port using NATS JetStream KV, so
// timer snapshots survive restarts of the service without a local disk.
package natskv

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// KV wraps a NATS JetStream KeyValue bucket as a snapshot store.
type KV struct {
	kv jetstream.KeyValue
}

// New opens (or creates) the named bucket and returns a KV bound to it.
func New(ctx context.Context, js jetstream.JetStream, bucket string) (*KV, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("open kv bucket %s: %w", bucket, err)
	}
	return &KV{kv: kv}, nil
}

// Load retrieves a value; ok is false when the key was never written.
func (s *KV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value(), true, nil
}

// Save stores a value under key.
func (s *KV) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.kv.Put(ctx, key, value)
	return err
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *KV) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}
