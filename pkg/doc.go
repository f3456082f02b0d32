// Package pkg provides the core libraries for the pub dependency tool.
//
// # Overview
//
// pub resolves a package's local path dependencies, links each resolved
// package into the workspace, and records the result in a lockfile. The pkg
// directory is organized by concern:
//
//  1. [manifest] - pubspec.toml parsing and name assertions
//  2. [lock] - pubspec.lock reading and writing
//  3. [source] - dependency source contracts and the source registry
//  4. [source/path] - the path dependency source (parse, validate, link)
//  5. [cache] - the session-scoped identity→manifest store
//  6. [graph] - serialization types for resolved closures
//  7. [observability] - optional hooks for resolution, cache, and link events
//  8. [errors] - structured error codes shared by all of the above
//  9. [buildinfo] - version metadata stamped at build time
//
// # Architecture
//
// The typical data flow through pub:
//
//	pubspec.toml
//	     ↓
//	[manifest] package (parse dependency declarations)
//	     ↓
//	[source/path] package (pin identities, validate targets)
//	     ↓
//	[cache] package (memoize target manifests per session)
//	     ↓
//	pubspec.lock + workspace links
//
// # Main Packages
//
// [source] defines the contracts every dependency source implements: parsing
// raw manifest descriptions into canonical form, deciding description
// equality, serializing descriptions for lockfiles, and materializing
// resolved packages. [source/path] is the one source this build carries.
//
// [cache] holds the Session shared by all sources within one resolution run.
// Directories are treated as immutable while a session lasts, so a manifest
// read once is never read again under the same identity.
//
// [manifest] and [lock] own the two on-disk formats. Manifests are TOML and
// declare dependencies; lockfiles are YAML and pin the resolved closure with
// descriptions relativized to the lockfile's directory.
//
// [graph] carries the machine-readable report emitted by the deps command,
// and [observability] lets embedders count cache hits or time resolutions
// without pulling an instrumentation framework into the core.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/source/...    # Specific package
//	go test -run Example        # Examples only
//
// [manifest]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/manifest
// [lock]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/lock
// [source]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/source
// [source/path]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/source/path
// [cache]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/cache
// [graph]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/graph
// [observability]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/observability
// [errors]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/lljwdbklb/pub/pkg/buildinfo
package pkg
