package lock

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lljwdbklb/pub/pkg/errors"
)

// Load reads a pubspec.lock file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no lockfile at %q", path)
	}
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "in %s", path)
	}
	return f, nil
}

// Parse parses pubspec.lock content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "malformed lockfile")
	}

	if f.Version > CurrentVersion {
		return nil, errors.New(errors.ErrCodeInvalidLockfile,
			"lockfile version %d is newer than this tool understands (max %d)", f.Version, CurrentVersion)
	}

	for name, p := range f.Packages {
		if p == nil {
			return nil, errors.New(errors.ErrCodeInvalidLockfile, "package %q has an empty record", name)
		}
		if p.Source == "" {
			return nil, errors.New(errors.ErrCodeInvalidLockfile, "package %q is missing a source", name)
		}
	}

	return &f, nil
}

// Save writes the lockfile to disk.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshaling lockfile")
	}
	return os.WriteFile(path, data, 0o644)
}
