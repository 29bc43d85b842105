package vcs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/internal/core/ports"
)

const NodeID graft.ID = "adapter.vcs"

func init() {
	graft.Register(graft.Node[ports.VCS]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.VCS, error) {
			return New(), nil
		},
	})
}
