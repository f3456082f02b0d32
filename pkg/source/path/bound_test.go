package path

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/manifest"
	"github.com/lljwdbklb/pub/pkg/source"
)

// writePackage creates a package directory with a minimal manifest.
func writePackage(t *testing.T, dir, name, version string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := fmt.Sprintf("name = %q\nversion = %q\n", name, version)
	if err := os.WriteFile(filepath.Join(dir, manifest.Filename), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGetVersions(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "1.2.3")

	src := New()
	bound := src.Bind(cache.NewSession())

	ref, err := src.ParseRef("shared", target, "")
	if err != nil {
		t.Fatalf("ParseRef() error: %v", err)
	}

	ids, err := bound.GetVersions(ref)
	if err != nil {
		t.Fatalf("GetVersions() error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("GetVersions() returned %d identities, want 1", len(ids))
	}
	if ids[0].Version != "1.2.3" {
		t.Errorf("GetVersions() version = %q, want %q", ids[0].Version, "1.2.3")
	}
	if ids[0].Name != "shared" {
		t.Errorf("GetVersions() name = %q, want %q", ids[0].Name, "shared")
	}
	if !src.Equal(ids[0].Description, ref.Description) {
		t.Error("GetVersions() identity carries a different description than the reference")
	}
}

func TestGetVersionsErrors(t *testing.T) {
	tmp := t.TempDir()

	filePath := filepath.Join(tmp, "not-a-dir")
	if err := os.WriteFile(filePath, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	emptyDir := filepath.Join(tmp, "empty")
	if err := os.Mkdir(emptyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	misnamed := filepath.Join(tmp, "misnamed")
	writePackage(t, misnamed, "something_else", "1.0.0")

	tests := []struct {
		name        string
		target      string
		wantErrCode errors.Code
		wantInMsg   []string
	}{
		{
			name:        "missing target",
			target:      filepath.Join(tmp, "nowhere"),
			wantErrCode: errors.ErrCodePackageNotFound,
			wantInMsg:   []string{"shared", filepath.Join(tmp, "nowhere")},
		},
		{
			name:        "target is a file",
			target:      filePath,
			wantErrCode: errors.ErrCodeNotADirectory,
			wantInMsg:   []string{"shared", "directory"},
		},
		{
			name:        "target has no manifest",
			target:      emptyDir,
			wantErrCode: errors.ErrCodeFileNotFound,
		},
		{
			name:        "target manifest names another package",
			target:      misnamed,
			wantErrCode: errors.ErrCodeNameMismatch,
			wantInMsg:   []string{"something_else", "shared"},
		},
	}

	src := New()
	bound := src.Bind(cache.NewSession())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := src.ParseRef("shared", tt.target, "")
			if err != nil {
				t.Fatalf("ParseRef() error: %v", err)
			}
			_, err = bound.GetVersions(ref)
			if err == nil {
				t.Fatal("GetVersions() expected error, got nil")
			}
			if code := errors.GetCode(err); code != tt.wantErrCode {
				t.Errorf("GetVersions() error code = %s, want %s", code, tt.wantErrCode)
			}
			for _, want := range tt.wantInMsg {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("GetVersions() error = %q, want it to mention %q", err.Error(), want)
				}
			}
		})
	}
}

// A target that exists but is a file is reported as the wrong kind, never as
// missing.
func TestGetVersionsFileIsNotMissing(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "shared")
	if err := os.WriteFile(filePath, []byte("not a package"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := New()
	bound := src.Bind(cache.NewSession())
	ref, _ := src.ParseRef("shared", filePath, "")

	_, err := bound.GetVersions(ref)
	if errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("GetVersions() reported PACKAGE_NOT_FOUND for an existing file: %v", err)
	}
	if !errors.Is(err, errors.ErrCodeNotADirectory) {
		t.Errorf("GetVersions() error = %v, want NOT_A_DIRECTORY", err)
	}
}

func TestDescribe(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "2.0.1")

	src := New()
	bound := src.Bind(cache.NewSession())

	id := source.PackageID{
		PackageRef: source.PackageRef{Name: "shared", Description: Descriptor{Path: target}},
		Version:    "2.0.1",
	}

	m, err := bound.Describe(id)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if m.Name != "shared" || m.Version != "2.0.1" {
		t.Errorf("Describe() = %s %s, want shared 2.0.1", m.Name, m.Version)
	}
}

// Describing the same identity twice reads disk once. The second lookup is
// served from the session even after the manifest file disappears.
func TestDescribeMemoized(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "1.2.3")

	src := New()
	session := cache.NewSession()
	bound := src.Bind(session)

	ref, _ := src.ParseRef("shared", target, "")
	ids, err := bound.GetVersions(ref)
	if err != nil {
		t.Fatalf("GetVersions() error: %v", err)
	}

	first, err := bound.Describe(ids[0])
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}

	if err := os.Remove(filepath.Join(target, manifest.Filename)); err != nil {
		t.Fatal(err)
	}

	second, err := bound.Describe(ids[0])
	if err != nil {
		t.Fatalf("Describe() after manifest removal error: %v", err)
	}
	if first != second {
		t.Error("Describe() returned a different manifest instance on the second call")
	}

	session.Reset()
	if _, err := bound.Describe(ids[0]); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Describe() after Reset() error = %v, want FILE_NOT_FOUND", err)
	}
}

// Aliased spellings of the same directory share one cache entry.
func TestDescribeMemoizedAcrossSpellings(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "1.2.3")
	if err := os.Mkdir(filepath.Join(tmp, "elsewhere"), 0o755); err != nil {
		t.Fatal(err)
	}

	src := New()
	bound := src.Bind(cache.NewSession())

	ref, _ := src.ParseRef("shared", target, "")
	if _, err := bound.GetVersions(ref); err != nil {
		t.Fatalf("GetVersions() error: %v", err)
	}

	if err := os.Remove(filepath.Join(target, manifest.Filename)); err != nil {
		t.Fatal(err)
	}

	// filepath.Join would clean the ".." away, which is the point here.
	aliased := source.PackageID{
		PackageRef: source.PackageRef{
			Name:        "shared",
			Description: Descriptor{Path: tmp + "/elsewhere/../shared", Relative: true},
		},
		Version: "1.2.3",
	}
	if _, err := bound.Describe(aliased); err != nil {
		t.Errorf("Describe() with aliased spelling missed the cache: %v", err)
	}
}

func TestGetRelativeLink(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "1.0.0")

	src := New()
	bound := src.Bind(cache.NewSession())

	ref, err := src.ParseRef("shared", "../shared", filepath.Join(tmp, "app", "pubspec.toml"))
	if err != nil {
		t.Fatalf("ParseRef() error: %v", err)
	}
	id := source.PackageID{PackageRef: ref, Version: "1.0.0"}

	dest := filepath.Join(tmp, "app", "packages", "shared")
	if err := bound.Get(id, dest); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	linkTarget, err := os.Readlink(dest)
	if err != nil {
		t.Fatalf("Readlink() error: %v", err)
	}
	if filepath.IsAbs(linkTarget) {
		t.Errorf("link target = %q, want a relative path", linkTarget)
	}
	if resolved := filepath.Join(filepath.Dir(dest), linkTarget); filepath.Clean(resolved) != target {
		t.Errorf("link resolves to %q, want %q", resolved, target)
	}
	if _, err := os.Stat(filepath.Join(dest, manifest.Filename)); err != nil {
		t.Errorf("manifest not reachable through the link: %v", err)
	}
}

func TestGetAbsoluteLink(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "1.0.0")

	src := New()
	bound := src.Bind(cache.NewSession())

	ref, _ := src.ParseRef("shared", target, "")
	id := source.PackageID{PackageRef: ref, Version: "1.0.0"}

	dest := filepath.Join(tmp, "packages", "shared")
	if err := bound.Get(id, dest); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	linkTarget, err := os.Readlink(dest)
	if err != nil {
		t.Fatalf("Readlink() error: %v", err)
	}
	if !filepath.IsAbs(linkTarget) {
		t.Errorf("link target = %q, want an absolute path", linkTarget)
	}
	if linkTarget != target {
		t.Errorf("link target = %q, want %q", linkTarget, target)
	}
}

func TestGetReplacesExisting(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared")
	writePackage(t, target, "shared", "1.0.0")

	src := New()
	bound := src.Bind(cache.NewSession())
	ref, _ := src.ParseRef("shared", target, "")
	id := source.PackageID{PackageRef: ref, Version: "1.0.0"}

	dest := filepath.Join(tmp, "packages", "shared")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(tmp, "stale"), dest); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := bound.Get(id, dest); err != nil {
		t.Fatalf("Get() over existing link error: %v", err)
	}
	linkTarget, err := os.Readlink(dest)
	if err != nil {
		t.Fatal(err)
	}
	if linkTarget != target {
		t.Errorf("link target = %q, want %q", linkTarget, target)
	}
}

func TestGetMissingTarget(t *testing.T) {
	tmp := t.TempDir()
	src := New()
	bound := src.Bind(cache.NewSession())

	ref, _ := src.ParseRef("shared", filepath.Join(tmp, "nowhere"), "")
	id := source.PackageID{PackageRef: ref, Version: "1.0.0"}

	dest := filepath.Join(tmp, "packages", "shared")
	err := bound.Get(id, dest)
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("Get() error = %v, want PACKAGE_NOT_FOUND", err)
	}
	if _, statErr := os.Lstat(dest); !os.IsNotExist(statErr) {
		t.Error("Get() created a link despite the missing target")
	}
}

func TestGetFileTarget(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "bar.txt")
	if err := os.WriteFile(filePath, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := New()
	bound := src.Bind(cache.NewSession())
	ref, _ := src.ParseRef("bar", filePath, "")
	id := source.PackageID{PackageRef: ref, Version: "1.0.0"}

	err := bound.Get(id, filepath.Join(tmp, "packages", "bar"))
	if !errors.Is(err, errors.ErrCodeNotADirectory) {
		t.Errorf("Get() error = %v, want NOT_A_DIRECTORY", err)
	}
	if !strings.Contains(errors.UserMessage(err), "bar") {
		t.Errorf("Get() error %q does not name the package", errors.UserMessage(err))
	}
}

func TestGetDirectory(t *testing.T) {
	src := New()
	bound := src.Bind(cache.NewSession())

	id := source.PackageID{
		PackageRef: source.PackageRef{
			Name:        "shared",
			Description: Descriptor{Path: "/does/not/exist"},
		},
		Version: "1.0.0",
	}

	dir, err := bound.GetDirectory(id)
	if err != nil {
		t.Fatalf("GetDirectory() error: %v", err)
	}
	if dir != "/does/not/exist" {
		t.Errorf("GetDirectory() = %q, want %q", dir, "/does/not/exist")
	}
}

func TestBoundSourceRejectsForeignDescription(t *testing.T) {
	src := New()
	bound := src.Bind(cache.NewSession())

	ref := source.PackageRef{Name: "shared", Description: fakeDescription{}}
	if _, err := bound.GetVersions(ref); !errors.Is(err, errors.ErrCodeInvalidDescription) {
		t.Errorf("GetVersions() error = %v, want INVALID_DESCRIPTION", err)
	}

	id := source.PackageID{PackageRef: ref, Version: "1.0.0"}
	if _, err := bound.Describe(id); !errors.Is(err, errors.ErrCodeInvalidDescription) {
		t.Errorf("Describe() error = %v, want INVALID_DESCRIPTION", err)
	}
	if err := bound.Get(id, "/tmp/anywhere"); !errors.Is(err, errors.ErrCodeInvalidDescription) {
		t.Errorf("Get() error = %v, want INVALID_DESCRIPTION", err)
	}
	if _, err := bound.GetDirectory(id); !errors.Is(err, errors.ErrCodeInvalidDescription) {
		t.Errorf("GetDirectory() error = %v, want INVALID_DESCRIPTION", err)
	}
}

func TestBindReturnsSource(t *testing.T) {
	src := New()
	bound := src.Bind(cache.NewSession())
	if bound.Source() != src {
		t.Error("Bind().Source() does not return the originating source")
	}
}
