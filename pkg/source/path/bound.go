package path

import (
	"os"
	"path/filepath"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/manifest"
	"github.com/lljwdbklb/pub/pkg/source"
)

// boundSource is the path source attached to a resolution session. All
// manifest lookups made through it are memoized on the session cache.
type boundSource struct {
	src     *Source
	session *cache.Session
}

// Source returns the underlying path source.
func (b *boundSource) Source() source.Source { return b.src }

// GetVersions lists the identities available for ref. A path dependency has
// exactly one: the directory's current content, at whatever version its
// manifest declares. The manifest read here is retained on the session so
// the follow-up Describe call is free.
func (b *boundSource) GetVersions(ref source.PackageRef) ([]source.PackageID, error) {
	d, err := descriptorOf(ref.Name, ref.Description)
	if err != nil {
		return nil, err
	}
	dir, err := validateDescriptor(ref.Name, d)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(dir, ref.Name)
	if err != nil {
		return nil, err
	}

	id := source.PackageID{PackageRef: ref, Version: m.Version}
	b.session.StoreManifest(b.cacheKey(id), m)
	return []source.PackageID{id}, nil
}

// Describe returns the manifest for id, from the session cache when the
// identity has been described before, from disk otherwise.
func (b *boundSource) Describe(id source.PackageID) (*manifest.Manifest, error) {
	d, err := descriptorOf(id.Name, id.Description)
	if err != nil {
		return nil, err
	}

	key := b.cacheKey(id)
	if m, ok := b.session.Manifest(key); ok {
		return m, nil
	}

	dir, err := validateDescriptor(id.Name, d)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(dir, id.Name)
	if err != nil {
		return nil, err
	}
	return b.session.StoreManifest(key, m), nil
}

// Get materializes id at destination as a symlink to the target directory.
// The link target mirrors the descriptor's spelling: relative descriptors
// produce a link relative to the link's own directory, absolute descriptors
// an absolute link. An existing file or link at destination is replaced.
func (b *boundSource) Get(id source.PackageID, destination string) error {
	d, err := descriptorOf(id.Name, id.Description)
	if err != nil {
		return err
	}
	dir, err := validateDescriptor(id.Name, d)
	if err != nil {
		return err
	}

	target := dir
	if d.Relative {
		rel, err := filepath.Rel(filepath.Dir(destination), dir)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err,
				"cannot express link target for %s relative to %q", id.Name, destination)
		}
		target = rel
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return err
	}
	if _, err := os.Lstat(destination); err == nil {
		if err := os.Remove(destination); err != nil {
			return err
		}
	}
	return os.Symlink(target, destination)
}

// GetDirectory returns the directory id points at. It does not check that
// the directory exists; callers that need validation use GetVersions or
// Describe.
func (b *boundSource) GetDirectory(id source.PackageID) (string, error) {
	d, err := descriptorOf(id.Name, id.Description)
	if err != nil {
		return "", err
	}
	return d.Path, nil
}

// cacheKey identifies a described package on the session. It is derived
// from the canonical descriptor path so aliased spellings of the same
// directory share one cache entry.
func (b *boundSource) cacheKey(id source.PackageID) string {
	d, _ := id.Description.(Descriptor)
	return cache.Key("manifest", Name, id.Name, id.Version, canonicalPath(d.Path))
}

// descriptorOf extracts the path descriptor carried by a reference,
// guarding against references that belong to another source.
func descriptorOf(name string, desc source.Description) (Descriptor, error) {
	d, ok := desc.(Descriptor)
	if !ok {
		return Descriptor{}, errors.New(errors.ErrCodeInvalidDescription,
			"the description for package %q does not belong to the path source", name)
	}
	return d, nil
}

// validateDescriptor checks that the descriptor's target is a directory on
// disk and returns it. A missing target means the package cannot be found;
// a target that exists but is not a directory is a different failure and is
// reported as such, so callers can tell "nothing there" from "something
// else there".
func validateDescriptor(name string, d Descriptor) (string, error) {
	info, err := os.Stat(d.Path)
	if os.IsNotExist(err) {
		return "", errors.New(errors.ErrCodePackageNotFound,
			"could not find package %s at %q", name, d.Path)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", errors.New(errors.ErrCodeNotADirectory,
			"path dependency for package %s must refer to a directory, not a file, at %q", name, d.Path)
	}
	return d.Path, nil
}

var _ source.BoundSource = (*boundSource)(nil)
