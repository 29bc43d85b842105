package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/internal/core/ports"
)

// NodeID is the graft node ID for the process-wide ports.Tracer.
const NodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Tracer, error) {
			tracer, _ := NewProvider("go.trai.ch/verify")
			return tracer, nil
		},
	})
}
