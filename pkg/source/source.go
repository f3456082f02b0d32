package source

import (
	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/manifest"
)

// Description says where one source finds a package. Concrete types are
// owned by the individual source packages and must be comparable values.
type Description interface {
	// Source returns the name of the source that owns this description.
	Source() string
}

// PackageRef identifies a dependency by name and source-specific
// description, without a version.
type PackageRef struct {
	Name        string
	Description Description
}

// Source returns the name of the source the reference belongs to.
func (r PackageRef) Source() string {
	if r.Description == nil {
		return ""
	}
	return r.Description.Source()
}

// PackageID pins a PackageRef to a concrete version. It is created only
// after the target's manifest has been read and uniquely identifies one
// resolvable package instance.
type PackageID struct {
	PackageRef
	Version string
}

// Source is the pure, cache-free half of a package source: parsing raw
// manifest input into typed references, converting descriptions to and from
// their portable serialized form, and comparing descriptions for identity.
type Source interface {
	// Name returns the source identifier used in manifests and lockfiles
	// (e.g. "path").
	Name() string

	// ParseRef turns a raw dependency description into a PackageRef.
	// containingManifest is the path of the manifest file that declared the
	// dependency; sources resolving relative descriptions require it.
	ParseRef(name string, description any, containingManifest string) (PackageRef, error)

	// ParseID reconstructs a PackageID from its serialized description map.
	// containingPath is the path of the file the record came from (usually
	// the lockfile); relative records are re-joined against its directory.
	ParseID(name, version string, description map[string]any, containingPath string) (PackageID, error)

	// Serialize converts a description into the portable map form persisted
	// in lockfiles, relativized against containingDir where the description
	// carries relative intent.
	Serialize(containingDir string, d Description) (map[string]any, error)

	// Format renders a description as a short human-readable string for
	// diagnostics, relativized like Serialize. Never used for persisted
	// state.
	Format(containingDir string, d Description) string

	// Equal reports whether two descriptions refer to the same dependency,
	// regardless of spelling.
	Equal(a, b Description) bool

	// Bind attaches the source to one resolution session, yielding the
	// cache-bound half of the capability set.
	Bind(session *cache.Session) BoundSource
}

// BoundSource is the cache-bound half of a package source. A BoundSource is
// valid for exactly one resolution session.
type BoundSource interface {
	// Source returns the pure source this was bound from.
	Source() Source

	// GetVersions lists the package instances a reference can resolve to.
	GetVersions(ref PackageRef) ([]PackageID, error)

	// Describe returns the manifest of the identified package, reading disk
	// at most once per identity per session.
	Describe(id PackageID) (*manifest.Manifest, error)

	// Get materializes the identified package at destination.
	Get(id PackageID, destination string) error

	// GetDirectory returns the directory the identified package lives in.
	GetDirectory(id PackageID) (string, error)
}
