// Package lock handles parsing and writing of pubspec.lock files.
// Lockfiles record the exact version and serialized description resolved
// for each dependency, enabling reproducible installs.
package lock
