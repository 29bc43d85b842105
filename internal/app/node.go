package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verify/internal/adapters/cas"
	"go.trai.ch/verify/internal/adapters/config"
	"go.trai.ch/verify/internal/adapters/fs"
	"go.trai.ch/verify/internal/adapters/logger"
	"go.trai.ch/verify/internal/adapters/metadata"
	"go.trai.ch/verify/internal/adapters/shell"
	"go.trai.ch/verify/internal/adapters/telemetry"
	"go.trai.ch/verify/internal/adapters/vcs"
	"go.trai.ch/verify/internal/core/ports"
)

const (
	// AppNodeID is the graft node ID for the fully-wired App.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the graft node ID for the CLI-facing Components.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.HasherNodeID,
			cas.NodeID,
			shell.NodeID,
			metadata.NodeID,
			logger.NodeID,
			vcs.NodeID,
			telemetry.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.CacheStore](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}
	extractor, err := graft.Dep[ports.MetadataExtractor](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	vc, err := graft.Dep[ports.VCS](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, hasher, store, executor, extractor, log, vc, tracer), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return &Components{App: a, Logger: log}, nil
}
