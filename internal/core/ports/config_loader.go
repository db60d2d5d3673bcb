package ports

import "github.com/quilldb/quill/internal/core/domain"

// ConfigLoader loads the server configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path. A missing file yields
	// the defaults.
	Load(path string) (*domain.Config, error)
}
