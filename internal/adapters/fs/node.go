package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/internal/core/ports"
)

const (
	WalkerNodeID   graft.ID = "adapter.fs.walker"
	ResolverNodeID graft.ID = "adapter.fs.resolver"
	HasherNodeID   graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.Globber]{
		ID:        ResolverNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.Globber, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(walker), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ResolverNodeID},
		Run: func(ctx context.Context) (ports.Hasher, error) {
			globber, err := graft.Dep[ports.Globber](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(globber), nil
		},
	})
}
