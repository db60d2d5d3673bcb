package modcache

import (
	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
)

// Module is one loaded code image together with its identity snapshot,
// reference count and the set of bindings resolved against it.
//
// The reference count covers every binding, every caller holding a module
// returned by Load, and every transient call-in-progress reference. When it
// reaches zero the module is removed from its table (if still present) and
// the image is closed. All fields are guarded by the engine mutex.
type Module struct {
	pkg      string
	image    ports.Image
	ident    domain.FileIdentity
	checksum uint64
	refs     int
	bindings map[*Binding]struct{}
	table    Table
	orphan   bool
}

// Package returns the dotted package name the module was loaded for.
func (m *Module) Package() string {
	return m.pkg
}

// Identity returns the backing file's identity snapshot captured at load time.
func (m *Module) Identity() domain.FileIdentity {
	return m.ident
}

// stale reports whether the backing file no longer matches the snapshot.
func (m *Module) stale(ident domain.FileIdentity) bool {
	return !m.ident.Equal(ident)
}

// markOrphan removes the module from name lookup without touching its
// refcount: future lookups never find it, existing holders keep it alive.
func (m *Module) markOrphan() {
	m.orphan = true
}
