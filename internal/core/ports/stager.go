package ports

import "github.com/quilldb/quill/internal/core/domain"

// Stager snapshots file identity and stages private copies of shared
// objects for loading.
//
//go:generate go run go.uber.org/mock/mockgen -source=stager.go -destination=mocks/mock_stager.go -package=mocks
type Stager interface {
	// Identity captures the identity snapshot of the file at path.
	Identity(path string) (domain.FileIdentity, error)

	// Stage copies the file at path verbatim into a uniquely named
	// temporary directory, under a file named after pkg, preserving
	// permission bits. A short copy is an error. The copy itself runs on
	// the stager's blocking-I/O pool; Stage returns once it completes.
	Stage(path, pkg string) (*domain.StagedImage, error)
}
