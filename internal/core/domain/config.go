package domain

// Config is the server configuration.
type Config struct {
	// SearchPaths are the directories scanned, in order, for extension
	// shared objects.
	SearchPaths []string

	// StagingDir is the directory staged copies are created under. Empty
	// means the system temporary directory.
	StagingDir string

	// ManifestPath is the JSON file recording explicitly loaded packages.
	ManifestPath string

	// Preload lists qualified function names bound at boot.
	Preload []string
}
