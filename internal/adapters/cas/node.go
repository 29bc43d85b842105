package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/internal/core/ports"
)

const NodeID graft.ID = "adapter.cache_store"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			return NewStore(), nil
		},
	})
}
