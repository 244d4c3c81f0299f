// Package manifest handles refl.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/udrefl/refl"
)

// FileName is the name of the configuration file.
const FileName = "refl.toml"

// Manifest represents a refl.toml project configuration.
type Manifest struct {
	Registry RegistryConfig `toml:"registry"`
	Log      LogConfig      `toml:"log"`
	Wrap     WrapConfig     `toml:"wrap"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Catalog  CatalogConfig  `toml:"catalog"`

	// Dir is the directory containing the refl.toml file (set at load time).
	Dir string `toml:"-"`
}

// RegistryConfig configures descriptor registries.
type RegistryConfig struct {
	Strict   bool   `toml:"strict"`    // contract violations panic
	MaxBytes uint64 `toml:"max-bytes"` // allocator cap, 0 = unlimited
}

// LogConfig configures the log backend.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	Path      string `toml:"path"` // empty logs to stderr
}

// WrapConfig configures introspection and code generation.
type WrapConfig struct {
	Packages []string `toml:"packages"`
	Output   string   `toml:"output"`
	Arch     string   `toml:"arch"` // empty uses the host architecture
}

// SnapshotConfig configures snapshot output.
type SnapshotConfig struct {
	Output string `toml:"output"`
}

// CatalogConfig configures the snapshot catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no refl.toml exists, rooted
// at dir.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Wrap.Output == "" {
		m.Wrap.Output = "reflgen"
	}
	if m.Snapshot.Output == "" {
		m.Snapshot.Output = "types.cbor"
	}
	if m.Catalog.Path == "" {
		m.Catalog.Path = filepath.Join(".refl", "catalog.db")
	}
}

// Load parses a refl.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if m.Log.Verbosity < 0 {
		return nil, fmt.Errorf("%s: log verbosity must not be negative", path)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a refl.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// RegistryOptions converts the [registry] section to refl options.
func (m *Manifest) RegistryOptions() []refl.Option {
	var opts []refl.Option
	if m.Registry.MaxBytes > 0 {
		opts = append(opts, refl.WithAllocator(refl.NewHeapAllocator(uintptr(m.Registry.MaxBytes))))
	}
	return opts
}

// NewRegistry returns a registry built with RegistryOptions. Strict mode is
// process-wide: strict = true turns it on for every registry, and
// strict = false leaves the current setting alone.
func (m *Manifest) NewRegistry() *refl.Registry {
	if m.Registry.Strict {
		refl.SetStrict(true)
	}
	return refl.NewRegistry(m.RegistryOptions()...)
}

// LogPath returns the log file path for commonlog.Configure, or nil to log
// to stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.Path == "" {
		return nil
	}
	p := m.resolve(m.Log.Path)
	return &p
}

// OutputDir returns the directory generated registration code is written to.
func (m *Manifest) OutputDir() string {
	return m.resolve(m.Wrap.Output)
}

// SnapshotPath returns the path snapshots are written to.
func (m *Manifest) SnapshotPath() string {
	return m.resolve(m.Snapshot.Output)
}

// CatalogPath returns the path of the catalog database.
func (m *Manifest) CatalogPath() string {
	return m.resolve(m.Catalog.Path)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
