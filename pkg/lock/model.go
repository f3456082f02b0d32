package lock

// Filename is the lockfile name written next to a root manifest.
const Filename = "pubspec.lock"

// CurrentVersion is the lockfile format version this tool writes.
const CurrentVersion = 1

// File represents pubspec.lock.
type File struct {
	Version  int                 `yaml:"version"`
	Packages map[string]*Package `yaml:"packages"`
}

// Package records the pinned state of a single dependency. Description is
// the source's serialized record; for path dependencies it is
// {path: string, relative: bool} with relative paths expressed against the
// lockfile's own directory.
type Package struct {
	Version     string         `yaml:"version"`
	Source      string         `yaml:"source"`
	Description map[string]any `yaml:"description"`
}
