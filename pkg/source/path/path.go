// Package path implements the source for dependencies that live at a local
// filesystem path.
//
// A path dependency is declared in a manifest as
//
//	[dependencies]
//	shared = { path = "../shared" }
//
// The raw description is a single path string. Relative paths are resolved
// against the location of the manifest that declares them at parse time, and
// the original relative/absolute spelling is remembered so that serialized
// forms (lockfile records, created links) preserve the author's portability
// intent: a dependency declared relative stays relative to whatever contains
// it, a dependency declared absolute stays pinned.
//
// Path sources are not versioned by the source itself. A target directory
// has exactly one concrete content state at lookup time, so version listing
// returns exactly one identity, carrying whatever version the target's own
// manifest declares.
package path

import (
	"path/filepath"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/source"
)

// Name is the source identifier used in manifests and lockfiles.
const Name = "path"

// Descriptor says where a path dependency lives.
//
// Path always holds the fully joined form: relative descriptions are
// resolved against their containing manifest when parsed. Relative records
// the original spelling and is never recomputed from Path.
type Descriptor struct {
	Path     string
	Relative bool
}

// Source implements source.Description.
func (d Descriptor) Source() string { return Name }

// Source is the path dependency source.
type Source struct{}

// New creates the path source.
func New() *Source { return &Source{} }

// Name returns the source identifier.
func (s *Source) Name() string { return Name }

// ParseRef turns a raw manifest description into a path reference.
//
// The description must be a plain path string. A syntactically relative path
// requires containingManifest (the manifest file that declared the
// dependency) and is stored joined against that manifest's directory; an
// absolute path is stored unchanged whether or not containingManifest is
// supplied.
func (s *Source) ParseRef(name string, description any, containingManifest string) (source.PackageRef, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return source.PackageRef{}, err
	}

	raw, ok := description.(string)
	if !ok {
		return source.PackageRef{}, errors.New(errors.ErrCodeInvalidDescription,
			"the description for package %q must be a path string", name)
	}

	d, err := parseDescriptor(raw, containingManifest)
	if err != nil {
		return source.PackageRef{}, err
	}

	return source.PackageRef{Name: name, Description: d}, nil
}

// parseDescriptor resolves the raw path spelling into a Descriptor.
func parseDescriptor(raw, containingManifest string) (Descriptor, error) {
	if filepath.IsAbs(raw) {
		return Descriptor{Path: raw, Relative: false}, nil
	}
	if containingManifest == "" {
		return Descriptor{}, errors.New(errors.ErrCodeInvalidDescription,
			"%q is a relative path, but it is not declared inside a manifest it could be relative to", raw)
	}
	return Descriptor{
		Path:     filepath.Join(filepath.Dir(containingManifest), raw),
		Relative: true,
	}, nil
}

// ParseID reconstructs an identity from its serialized description map.
//
// The map must have the exact shape {path: string, relative: bool}. Records
// with relative=true are re-joined against the directory of containingPath
// (the file the record came from), keeping the Descriptor invariant that
// Path is always fully joined.
func (s *Source) ParseID(name, version string, description map[string]any, containingPath string) (source.PackageID, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return source.PackageID{}, err
	}

	rawPath, ok := description["path"]
	if !ok {
		return source.PackageID{}, errors.New(errors.ErrCodeInvalidDescription,
			"the description for package %q is missing the \"path\" field", name)
	}
	p, ok := rawPath.(string)
	if !ok {
		return source.PackageID{}, errors.New(errors.ErrCodeInvalidDescription,
			"the \"path\" field of the description for package %q must be a string", name)
	}

	rawRelative, ok := description["relative"]
	if !ok {
		return source.PackageID{}, errors.New(errors.ErrCodeInvalidDescription,
			"the description for package %q is missing the \"relative\" field", name)
	}
	relative, ok := rawRelative.(bool)
	if !ok {
		return source.PackageID{}, errors.New(errors.ErrCodeInvalidDescription,
			"the \"relative\" field of the description for package %q must be a boolean", name)
	}

	d := Descriptor{Path: p, Relative: relative}
	if relative {
		if containingPath == "" {
			return source.PackageID{}, errors.New(errors.ErrCodeInvalidDescription,
				"the description for package %q is relative, but the file it came from is unknown", name)
		}
		d.Path = filepath.Join(filepath.Dir(containingPath), p)
	}

	return source.PackageID{
		PackageRef: source.PackageRef{Name: name, Description: d},
		Version:    version,
	}, nil
}

// Serialize converts a descriptor into the portable two-field record
// persisted in lockfiles. Relative descriptors store a path relative to
// containingDir (the directory the record will live in); absolute
// descriptors are never relativized.
func (s *Source) Serialize(containingDir string, d source.Description) (map[string]any, error) {
	desc, ok := d.(Descriptor)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidDescription, "not a path description: %v", d)
	}

	if !desc.Relative {
		return map[string]any{"path": desc.Path, "relative": false}, nil
	}

	rel, err := filepath.Rel(containingDir, desc.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err,
			"cannot express %q relative to %q", desc.Path, containingDir)
	}
	return map[string]any{"path": rel, "relative": true}, nil
}

// Format renders a descriptor for diagnostics: the same relativization as
// Serialize, path string only. Falls back to the stored path when it cannot
// be relativized. Never used for persisted state.
func (s *Source) Format(containingDir string, d source.Description) string {
	desc, ok := d.(Descriptor)
	if !ok {
		return ""
	}
	if !desc.Relative {
		return desc.Path
	}
	rel, err := filepath.Rel(containingDir, desc.Path)
	if err != nil {
		return desc.Path
	}
	return rel
}

// Equal reports whether two descriptions refer to the same directory.
//
// Both paths are canonicalized before comparison: cleaned, absolutized, and
// symlink-resolved. Plain string comparison of normalized paths is not
// enough because on-disk layouts may alias the same real directory through
// links; the Relative flag is spelling, not identity, and is ignored.
func (s *Source) Equal(a, b source.Description) bool {
	da, ok := a.(Descriptor)
	if !ok {
		return false
	}
	db, ok := b.(Descriptor)
	if !ok {
		return false
	}
	return canonicalPath(da.Path) == canonicalPath(db.Path)
}

// Bind attaches the source to a resolution session.
func (s *Source) Bind(session *cache.Session) source.BoundSource {
	return &boundSource{src: s, session: session}
}

// canonicalPath returns a cleaned path with symlinks resolved when possible.
// When the target does not exist the cleaned absolute path is used, so
// descriptors pointing at missing directories still compare predictably.
func canonicalPath(path string) string {
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	resolved, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		return cleaned
	}
	return filepath.Clean(resolved)
}

var _ source.Source = (*Source)(nil)
var _ source.Description = Descriptor{}
