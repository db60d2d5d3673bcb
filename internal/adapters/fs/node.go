package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/quilldb/quill/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"github.com/quilldb/quill/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
)

const (
	ResolverNodeID graft.ID = "adapter.fs.resolver"
	StagerNodeID   graft.ID = "adapter.fs.stager"
)

func init() {
	// Resolver Node
	graft.Register(graft.Node[ports.PathResolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.PathResolver, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewSearchResolver(cfg.SearchPaths), nil
		},
	})

	// Stager Node
	graft.Register(graft.Node[ports.Stager]{
		ID:        StagerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Stager, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStager(cfg.StagingDir, log), nil
		},
	})
}
