package ports

import "github.com/quilldb/quill/internal/core/domain"

// ImageOpener is the platform dynamic-loading primitive.
//
//go:generate go run go.uber.org/mock/mockgen -source=image.go -destination=mocks/mock_image.go -package=mocks
type ImageOpener interface {
	// Open loads the shared object at path into the process. Each call
	// against a distinct path produces a distinct image, even when the
	// bytes are identical.
	Open(path string) (Image, error)
}

// Image is one loaded code image.
type Image interface {
	// Lookup resolves an exported entry point by symbol name.
	Lookup(symbol string) (domain.ExtensionFunc, error)

	// Close unloads the image. The caller guarantees no entry point
	// resolved from this image is invoked afterwards.
	Close() error
}
