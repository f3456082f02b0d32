package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/manifest"
	"github.com/lljwdbklb/pub/pkg/observability"
	"github.com/lljwdbklb/pub/pkg/source"
)

// resolvedPackage is one dependency in the local closure, with its pinned
// identity and the manifest read from its target directory.
type resolvedPackage struct {
	id       source.PackageID
	manifest *manifest.Manifest
	deps     []string // names of its resolved local dependencies
}

// closure is the result of walking a root manifest's local dependency graph.
type closure struct {
	root     *manifest.Manifest
	rootDeps []string                    // resolved direct deps of the root, sorted
	packages map[string]*resolvedPackage // by package name
	order    []string                    // discovery order
	skipped  []string                    // deps on sources this build does not carry
}

// walker resolves the local dependency closure of one root manifest within a
// single resolution session.
type walker struct {
	registry *source.Registry
	session  *cache.Session
	logger   *log.Logger
	bound    map[string]source.BoundSource
}

func newWalker(registry *source.Registry, session *cache.Session, logger *log.Logger) *walker {
	return &walker{
		registry: registry,
		session:  session,
		logger:   logger,
		bound:    make(map[string]source.BoundSource),
	}
}

// boundFor returns the session-bound form of src, binding on first use so
// every lookup in one walk shares the same memoization.
func (w *walker) boundFor(src source.Source) source.BoundSource {
	b, ok := w.bound[src.Name()]
	if !ok {
		b = src.Bind(w.session)
		w.bound[src.Name()] = b
	}
	return b
}

// walk loads the root manifest in dir and resolves every reachable local
// dependency. Dev-dependencies are honored for the root package only, the
// way installs treat them. Dependencies on sources the registry does not
// carry are recorded as skipped rather than failing the walk: resolving
// those is the solver's job, not this tool's.
func (w *walker) walk(dir string) (*closure, error) {
	root, err := manifest.Load(dir, "")
	if err != nil {
		return nil, err
	}

	deps, err := mergeDeps(root.Dependencies, root.DevDependencies)
	if err != nil {
		return nil, err
	}

	cl := &closure{
		root:     root,
		packages: make(map[string]*resolvedPackage),
	}

	rootDeps, err := w.resolveDeps(cl, root, deps)
	if err != nil {
		return nil, err
	}
	cl.rootDeps = rootDeps
	return cl, nil
}

// resolveDeps resolves one manifest's dependency entries in name order and
// returns the names that joined the closure. A name encountered twice must
// refer to the same location; two different locations for one name cannot
// both be linked and fail the walk.
func (w *walker) resolveDeps(cl *closure, m *manifest.Manifest, deps map[string]manifest.Dependency) ([]string, error) {
	var resolved []string
	for _, name := range sortedDepNames(deps) {
		dep := deps[name]

		srcName := dep.Source
		if srcName == "" {
			// Bare constraint strings belong to the default hosted source.
			srcName = "hosted"
		}
		src := w.registry.Find(srcName)
		if src == nil {
			w.logger.Warnf("Skipping %s: no %q source in this build", name, srcName)
			cl.skipped = append(cl.skipped, fmt.Sprintf("%s (%s)", name, srcName))
			continue
		}

		ref, err := src.ParseRef(name, dep.RawDesc, m.Path())
		if err != nil {
			return nil, err
		}

		if prev, ok := cl.packages[name]; ok {
			if !src.Equal(prev.id.Description, ref.Description) {
				rootDir := cl.root.Dir()
				return nil, errors.New(errors.ErrCodeInvalidManifest,
					"dependency %q is required from conflicting locations (%q and %q)",
					name, src.Format(rootDir, prev.id.Description), src.Format(rootDir, ref.Description))
			}
			resolved = append(resolved, name)
			continue
		}

		pkg, err := w.resolveOne(name, src, ref)
		if err != nil {
			return nil, err
		}
		cl.packages[name] = pkg
		cl.order = append(cl.order, name)
		w.logger.Debugf("Resolved %s %s from %s", name, pkg.id.Version, srcName)

		children, err := w.resolveDeps(cl, pkg.manifest, pkg.manifest.Dependencies)
		if err != nil {
			return nil, err
		}
		pkg.deps = children

		resolved = append(resolved, name)
	}
	return resolved, nil
}

// resolveOne pins the identity of one dependency through its source and
// loads the target manifest, reporting the outcome to any registered
// resolve hooks.
func (w *walker) resolveOne(name string, src source.Source, ref source.PackageRef) (pkg *resolvedPackage, err error) {
	observability.Resolve().OnResolveStart(name)
	start := time.Now()
	defer func() {
		version := ""
		if pkg != nil {
			version = pkg.id.Version
		}
		observability.Resolve().OnResolveComplete(name, version, time.Since(start), err)
	}()

	bound := w.boundFor(src)
	ids, err := bound.GetVersions(ref)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodePackageNotFound, "no versions of %s found", name)
	}
	id := ids[0]

	target, err := bound.Describe(id)
	if err != nil {
		return nil, err
	}

	return &resolvedPackage{id: id, manifest: target}, nil
}

// mergeDeps combines regular and dev dependencies for the root package.
// A name declared in both sections is a manifest error.
func mergeDeps(deps, devDeps map[string]manifest.Dependency) (map[string]manifest.Dependency, error) {
	merged := make(map[string]manifest.Dependency, len(deps)+len(devDeps))
	for name, d := range deps {
		merged[name] = d
	}
	for name, d := range devDeps {
		if _, ok := merged[name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest,
				"%q appears in both dependencies and dev-dependencies", name)
		}
		merged[name] = d
	}
	return merged, nil
}

// sortedDepNames returns the dependency names in sorted order so walks and
// their outputs are deterministic.
func sortedDepNames(deps map[string]manifest.Dependency) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
