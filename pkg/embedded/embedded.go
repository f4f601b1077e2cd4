// Package embedded provides access to the data files compiled into the
// binary.
//
// The embed.FS is declared in the data package and handed to this package
// through Init, so tests can substitute any fs.FS. Callers address files
// by their repository path ("data/catalog/pets.yaml").
//
// Init must be called before any other function.
package embedded

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gonewx/petanim/pkg/config"
)

// Paths of the bundled data.
const (
	CatalogPath      = "data/catalog/pets.yaml"
	EngineConfigPath = "data/engine.yaml"
)

var (
	dataFS      fs.FS
	initialized bool
)

// Init installs the file system rooted at the data directory.
func Init(data fs.FS) {
	dataFS = data
	initialized = true
}

// IsInitialized reports whether Init was called.
func IsInitialized() bool {
	return initialized
}

// normalize converts separators, strips a leading "./" and maps the
// "data/" prefix onto the root of the installed file system.
func normalize(path string) (string, error) {
	if !initialized {
		return "", fmt.Errorf("embedded package not initialized, call Init() first")
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	rel, ok := strings.CutPrefix(path, "data/")
	if !ok {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return rel, nil
}

// Open opens an embedded file.
func Open(path string) (fs.File, error) {
	path, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return dataFS.Open(path)
}

// ReadFile reads an embedded file.
func ReadFile(path string) ([]byte, error) {
	path, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, path)
}

// Exists reports whether an embedded file exists.
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob matches embedded files. Matches carry the "data/" prefix.
func Glob(pattern string) ([]string, error) {
	pattern, err := normalize(pattern)
	if err != nil {
		return nil, err
	}
	matches, err := fs.Glob(dataFS, pattern)
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = "data/" + m
	}
	return matches, nil
}

// LoadCatalog parses an embedded catalog. The format follows the extension.
func LoadCatalog(path string) (*config.Catalog, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog %s: %w", path, err)
	}
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	catalog, err := config.ParseCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog %s: %w", path, err)
	}
	return catalog, nil
}

// DefaultCatalog parses the bundled pet catalog.
func DefaultCatalog() (*config.Catalog, error) {
	return LoadCatalog(CatalogPath)
}

// DefaultEngineConfig parses the bundled engine tuning.
func DefaultEngineConfig() (*config.EngineConfig, error) {
	data, err := ReadFile(EngineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded engine config: %w", err)
	}
	return config.ParseEngineConfig(data)
}
