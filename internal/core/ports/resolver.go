// Package ports defines the core interfaces for the server.
package ports

// PathResolver locates the shared-object file backing a package name.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type PathResolver interface {
	// Resolve returns an absolute, canonicalized path to the package's
	// shared object. A search miss or a canonicalization failure is an
	// error; the loader reports either one as a missing module.
	Resolve(pkg string) (string, error)
}
