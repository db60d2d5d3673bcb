// Package modcache implements the native-extension loader and cache. It
// loads shared objects implementing stored functions, resolves callable
// symbols inside them, caches loaded images for reuse across lookups, and
// hot-reloads an extension while calls bound to the old version are still
// in flight.
//
// Two independent tables back two client interfaces with different
// ownership rules. The legacy table serves implicit find-or-load
// resolution: once populated it is authoritative, and a module changed on
// disk keeps serving from the loaded copy until an explicit Reload. The
// explicit table serves Load/Unload: a cached module is revalidated against
// its backing file on every Load and transparently replaced when stale.
// The two key spaces are independent; the same package may own a separate
// module in each table. Keeping them disjoint in practice is a caller
// contract, not enforced here.
package modcache
