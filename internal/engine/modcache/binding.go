package modcache

import "github.com/quilldb/quill/internal/core/domain"

// Binding pairs a qualified function name with the entry point resolved for
// it inside its owning module. A legacy binding may start unresolved; the
// first call resolves it. During a reload a binding migrates between
// modules without being destroyed, so callers can keep dispatching through
// the same handle across extension versions.
type Binding struct {
	qualified string
	name      domain.FuncName
	fn        domain.ExtensionFunc
	owner     *Module
	legacy    bool
}

// Name returns the qualified name the binding was created for.
func (b *Binding) Name() string {
	return b.qualified
}

// Resolved reports whether an entry point is currently bound.
func (b *Binding) Resolved() bool {
	return b.fn != nil
}
