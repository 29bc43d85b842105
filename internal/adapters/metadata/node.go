package metadata

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/internal/core/ports"
)

const NodeID graft.ID = "adapter.metadata_extractor"

func init() {
	graft.Register(graft.Node[ports.MetadataExtractor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.MetadataExtractor, error) {
			return NewExtractor(), nil
		},
	})
}
