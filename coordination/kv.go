package coordination

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/replwork/internal/kvutil"
	"github.com/arloliu/replwork/internal/natsutil"
	"github.com/arloliu/replwork/types"
)

// KV is a CoordinationClient backed by a NATS JetStream KeyValue bucket.
//
// Each node lives at the key produced by kvutil.PathToKey(path). A deleted or
// purged key reads as an absent node.
type KV struct {
	kv jetstream.KeyValue
}

var _ types.CoordinationClient = (*KV)(nil)

// NewKV creates a coordination client over the given bucket.
//
// Example:
//
//	kv, _ := js.KeyValue(ctx, "replwork-workqueue")
//	coord := coordination.NewKV(kv)
//	_, err := coord.Get(ctx, "/replwork/id/replication/workqueue/wal1|peer|remote|1")
func NewKV(kv jetstream.KeyValue) *KV {
	return &KV{kv: kv}
}

// Get returns the data stored at path, or types.ErrNodeNotFound.
func (c *KV) Get(ctx context.Context, path string) ([]byte, error) {
	entry, err := c.kv.Get(ctx, kvutil.PathToKey(path))
	if err != nil {
		if natsutil.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, path)
		}

		return nil, fmt.Errorf("failed to read node %s: %w", path, err)
	}

	return entry.Value(), nil
}
