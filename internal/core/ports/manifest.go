package ports

// ManifestStore persists the set of explicitly loaded packages so a server
// restart can restore them.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestStore interface {
	// Packages returns the recorded package names, sorted.
	Packages() ([]string, error)

	// Add records a package. Adding a recorded package is a no-op.
	Add(pkg string) error

	// Remove drops a package. Removing an absent package is a no-op.
	Remove(pkg string) error
}
