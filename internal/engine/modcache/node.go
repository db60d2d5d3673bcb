package modcache

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/quilldb/quill/internal/adapters/dl"     //nolint:depguard // Wired in engine wiring
	"github.com/quilldb/quill/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"github.com/quilldb/quill/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"github.com/quilldb/quill/internal/core/ports"
)

// NodeID is the unique identifier for the engine Graft node.
const NodeID graft.ID = "engine.modcache"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.ResolverNodeID,
			fs.StagerNodeID,
			dl.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			resolver, err := graft.Dep[ports.PathResolver](ctx)
			if err != nil {
				return nil, err
			}

			stager, err := graft.Dep[ports.Stager](ctx)
			if err != nil {
				return nil, err
			}

			opener, err := graft.Dep[ports.ImageOpener](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(resolver, stager, opener, log), nil
		},
	})
}
