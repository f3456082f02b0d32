// Package source defines the interfaces every package source implements and
// the reference/identity types shared between them.
//
// # Overview
//
// A source is one way a dependency can be obtained: from a local filesystem
// path, a hosted registry, a version-control checkout. The generic resolver
// treats all of them through the same capability set:
//
//	{ ParseRef, ParseID, GetVersions, Describe, Get, GetDirectory,
//	  Serialize, Format, Equal }
//
// This repository implements the path source ([path]); the interfaces leave
// room for registry- and VCS-backed siblings.
//
// # Pure versus bound
//
// The capability set splits into two interfaces:
//
//   - [Source] is pure and cache-free: parsing, serialization, formatting,
//     and description equality. These never touch the session cache and at
//     most read the filesystem (symlink resolution during Equal).
//   - [BoundSource] is obtained via [Source.Bind] and holds a reference to
//     one resolution session's cache. Version listing, manifest description,
//     and link materialization live here.
//
// Binding makes the shared mutable state explicit: a BoundSource is only
// valid for the lifetime of the session it was bound to.
//
// # References and identities
//
// A [PackageRef] names a dependency together with the source-specific
// [Description] saying where it lives, but no version. A [PackageID] adds
// the resolved version; it is produced by [BoundSource.GetVersions] once the
// target's own manifest has been read, and uniquely names one resolvable
// package instance.
//
// # Descriptions
//
// Each source owns a concrete [Description] type, parsed once from raw
// manifest input and immutable afterwards. Only the serialization boundary
// (lockfiles) deals in the generic map form; everything in between is
// strongly typed.
//
// [path]: github.com/lljwdbklb/pub/pkg/source/path
package source
