package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/quilldb/quill/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"github.com/quilldb/quill/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"github.com/quilldb/quill/internal/adapters/manifest" //nolint:depguard // Wired in app layer
	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"github.com/quilldb/quill/internal/engine/modcache"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			manifest.NodeID,
			logger.NodeID,
			modcache.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			engine, err := graft.Dep[*modcache.Engine](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ManifestStore](ctx)
			if err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(engine, store, cfg, log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
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

	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    a,
		Logger: log,
		Config: cfg,
	}, nil
}
