package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
//
// Source-specific validation (e.g. registry naming rules) should be done
// separately by the individual sources.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"/",    // Path separator
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// versionRegex matches semantic versions: major.minor.patch with optional
// pre-release and build suffixes (e.g. "1.2.3", "0.1.0-beta.2+build.45").
var versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// ValidateVersion validates a declared package version string.
// Versions follow semver: three dot-separated numeric components with
// optional pre-release and build metadata.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}

	if !versionRegex.MatchString(version) {
		return New(ErrCodeInvalidVersion, "invalid version %q (expected semver, e.g. 1.2.3)", version)
	}

	return nil
}

// ValidateSourceName validates a dependency source name.
// Source names are short lowercase identifiers like "path" or "hosted".
var sourceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func ValidateSourceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "source name cannot be empty")
	}

	if !sourceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid source name: %q", name)
	}

	return nil
}
