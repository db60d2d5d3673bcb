package modcache

// Lookup returns the cached module for pkg in table t, or nil.
// Exported for testing purposes only.
func (e *Engine) Lookup(t Table, pkg string) *Module {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.find(t, pkg)
}

// Refs returns the module's current reference count.
// Exported for testing purposes only.
func (m *Module) Refs() int {
	return m.refs
}

// Orphaned reports whether the module has been removed from name lookup.
// Exported for testing purposes only.
func (m *Module) Orphaned() bool {
	return m.orphan
}

// BindingCount returns the number of bindings resolved against the module.
// Exported for testing purposes only.
func (m *Module) BindingCount() int {
	return len(m.bindings)
}

// Owner returns the module currently providing the binding's entry point.
// Exported for testing purposes only.
func (b *Binding) Owner() *Module {
	return b.owner
}
