// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/quilldb/quill/internal/adapters/config"
	_ "github.com/quilldb/quill/internal/adapters/dl"
	_ "github.com/quilldb/quill/internal/adapters/fs"
	_ "github.com/quilldb/quill/internal/adapters/logger"
	_ "github.com/quilldb/quill/internal/adapters/manifest"
	// Register app and engine nodes.
	_ "github.com/quilldb/quill/internal/app"
	_ "github.com/quilldb/quill/internal/engine/modcache"
)
