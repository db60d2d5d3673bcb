package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/quilldb/quill/internal/adapters/config"
	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
)

const NodeID graft.ID = "adapter.manifest"

func init() {
	graft.Register(graft.Node[ports.ManifestStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ManifestStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			store, err := NewStore(cfg.ManifestPath)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
