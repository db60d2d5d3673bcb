package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"github.com/quilldb/quill/internal/core/domain"
)

const NodeID graft.ID = "adapter.config"

// envConfigPath overrides the configuration file location.
const envConfigPath = "QUILL_CONFIG"

func init() {
	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*domain.Config, error) {
			path := os.Getenv(envConfigPath)
			if path == "" {
				path = DefaultFilename
			}
			return NewLoader().Load(path)
		},
	})
}
