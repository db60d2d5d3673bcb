// Package config provides the configuration loader for quill.
package config

import (
	"errors"
	iofs "io/fs"
	"os"

	"github.com/quilldb/quill/internal/core/domain"
	"github.com/quilldb/quill/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up when none is given.
const DefaultFilename = "quill.yaml"

const defaultManifestPath = "quill-manifest.json"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Quillfile represents the structure of the quill.yaml configuration file.
type Quillfile struct {
	SearchPaths []string `yaml:"search_paths"`
	StagingDir  string   `yaml:"staging_dir"`
	Manifest    string   `yaml:"manifest"`
	Preload     []string `yaml:"preload"`
}

// Load reads the configuration file at path. A missing file yields the
// defaults: the working directory on the search path and a manifest
// alongside it.
func (l *Loader) Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is provided by the operator
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return withDefaults(&Quillfile{}), nil
		}
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var qf Quillfile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}
	return withDefaults(&qf), nil
}

func withDefaults(qf *Quillfile) *domain.Config {
	cfg := &domain.Config{
		SearchPaths:  qf.SearchPaths,
		StagingDir:   qf.StagingDir,
		ManifestPath: qf.Manifest,
		Preload:      qf.Preload,
	}
	if len(cfg.SearchPaths) == 0 {
		cfg.SearchPaths = []string{"."}
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = defaultManifestPath
	}
	return cfg
}
