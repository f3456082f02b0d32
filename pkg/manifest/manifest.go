// Package manifest reads pubspec.toml package manifests.
//
// A manifest declares the package's own identity (name, version) and its
// dependencies. Each dependency entry is either a bare version-constraint
// string (a hosted dependency, resolved by a registry source) or a table
// with exactly one source-name key whose value is that source's raw
// description:
//
//	name = "myapp"
//	version = "1.4.0"
//
//	[dependencies]
//	http = "^1.2.0"
//	shared = { path = "../shared" }
//
// The manifest loader does not interpret descriptions; it hands the raw
// value to the matching source's parser.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lljwdbklb/pub/pkg/errors"
)

// Filename is the manifest file name looked up inside a package directory.
const Filename = "pubspec.toml"

// DefaultVersion is assumed when a manifest declares no version.
const DefaultVersion = "0.0.0"

// Manifest holds the parsed contents of a pubspec.toml file.
type Manifest struct {
	Name            string
	Version         string
	Description     string
	Dependencies    map[string]Dependency
	DevDependencies map[string]Dependency

	path string // file the manifest was loaded from ("" when parsed from bytes)
}

// Dependency is one entry in a dependencies table. Exactly one of Constraint
// or Source is set: bare string values declare a hosted version constraint,
// table values declare a source name with its raw description.
type Dependency struct {
	Constraint string // version constraint for hosted dependencies
	Source     string // source name (e.g. "path") for sourced dependencies
	RawDesc    any    // raw description value, interpreted by the source
}

// Path returns the file path the manifest was loaded from, or empty if it
// was parsed from raw bytes.
func (m *Manifest) Path() string { return m.path }

// Dir returns the directory containing the manifest file.
func (m *Manifest) Dir() string {
	if m.path == "" {
		return ""
	}
	return filepath.Dir(m.path)
}

// manifestFile is the raw TOML shape before dependency interpretation.
type manifestFile struct {
	Name            string         `toml:"name"`
	Version         string         `toml:"version"`
	Description     string         `toml:"description"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

// Load reads the manifest in dir and optionally asserts its declared name.
//
// A missing pubspec.toml is FILE_NOT_FOUND; malformed TOML or an invalid
// shape is INVALID_MANIFEST. When expectedName is non-empty and the declared
// name differs, Load fails with NAME_MISMATCH: a path dependency's target
// must agree about what it is called.
func Load(dir, expectedName string) (*Manifest, error) {
	path := filepath.Join(dir, Filename)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no %s found in %q", Filename, dir)
	}
	if err != nil {
		return nil, err
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "in %s", path)
	}
	m.path = path

	if expectedName != "" && m.Name != expectedName {
		return nil, errors.New(errors.ErrCodeNameMismatch,
			"%q doesn't match the name %q in the dependency description (%s)", m.Name, expectedName, path)
	}

	return m, nil
}

// Parse decodes manifest bytes without touching the filesystem.
func Parse(data []byte) (*Manifest, error) {
	var raw manifestFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "malformed manifest")
	}

	if err := errors.ValidatePackageName(raw.Name); err != nil {
		return nil, err
	}

	version := raw.Version
	if version == "" {
		version = DefaultVersion
	}
	if err := errors.ValidateVersion(version); err != nil {
		return nil, err
	}

	deps, err := parseDependencies(raw.Dependencies)
	if err != nil {
		return nil, err
	}
	devDeps, err := parseDependencies(raw.DevDependencies)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		Name:            raw.Name,
		Version:         version,
		Description:     raw.Description,
		Dependencies:    deps,
		DevDependencies: devDeps,
	}, nil
}

// parseDependencies interprets the values of a dependencies table.
func parseDependencies(raw map[string]any) (map[string]Dependency, error) {
	deps := make(map[string]Dependency, len(raw))
	for name, value := range raw {
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, err
		}

		switch v := value.(type) {
		case string:
			deps[name] = Dependency{Constraint: v}
		case map[string]any:
			if len(v) != 1 {
				return nil, errors.New(errors.ErrCodeInvalidManifest,
					"dependency %q must declare exactly one source, found %d", name, len(v))
			}
			for src, desc := range v {
				if err := errors.ValidateSourceName(src); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "dependency %q", name)
				}
				deps[name] = Dependency{Source: src, RawDesc: desc}
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidManifest,
				"dependency %q must be a version constraint string or a source table", name)
		}
	}
	return deps, nil
}
