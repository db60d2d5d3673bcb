//go:build darwin || freebsd || linux || netbsd

package dl

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/quilldb/quill/internal/core/ports"
)

const NodeID graft.ID = "adapter.dl"

func init() {
	graft.Register(graft.Node[ports.ImageOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ImageOpener, error) {
			return NewOpener(), nil
		},
	})
}
