package modcache

import "fmt"

// Table selects one of the two module tables.
type Table int

const (
	// TableLegacy backs the implicit find-or-load interface. Only this
	// table supports Reload.
	TableLegacy Table = iota
	// TableExplicit backs the explicit Load/Unload interface.
	TableExplicit

	tableCount
)

// cache holds the two package-name to module tables.
type cache struct {
	tables [tableCount]map[string]*Module
}

func newCache() *cache {
	c := &cache{}
	for i := range c.tables {
		c.tables[i] = make(map[string]*Module)
	}
	return c
}

func (c *cache) find(t Table, pkg string) *Module {
	return c.tables[t][pkg]
}

func (c *cache) insert(m *Module) {
	c.tables[m.table][m.pkg] = m
}

// update replaces an existing entry. The key's presence was proven by a
// prior lookup, so an absent key means the table was mutated behind an
// in-flight transaction and the symbol state can no longer be trusted.
func (c *cache) update(m *Module) {
	if _, ok := c.tables[m.table][m.pkg]; !ok {
		panic(fmt.Sprintf("modcache: cache entry for %q vanished during update", m.pkg))
	}
	c.tables[m.table][m.pkg] = m
}

func (c *cache) remove(m *Module) {
	delete(c.tables[m.table], m.pkg)
}
