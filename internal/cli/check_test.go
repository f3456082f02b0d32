package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/lock"
)

func TestRunCheckUpToDate(t *testing.T) {
	appDir := testWorkspace(t)
	c := New(io.Discard, LogInfo)
	ctx := testContext()

	if err := c.runGet(ctx, appDir, getOpts{}); err != nil {
		t.Fatalf("runGet() error: %v", err)
	}
	if err := c.runCheck(ctx, appDir); err != nil {
		t.Errorf("runCheck() error: %v, want nil", err)
	}
}

func TestRunCheckMissingLockfile(t *testing.T) {
	appDir := testWorkspace(t)
	c := New(io.Discard, LogInfo)

	err := c.runCheck(testContext(), appDir)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("runCheck() error = %v, want FILE_NOT_FOUND", err)
	}
}

// Editing a target manifest after the lockfile was written makes the pinned
// version stale.
func TestRunCheckVersionDrift(t *testing.T) {
	appDir := testWorkspace(t)
	c := New(io.Discard, LogInfo)
	ctx := testContext()

	if err := c.runGet(ctx, appDir, getOpts{}); err != nil {
		t.Fatalf("runGet() error: %v", err)
	}

	writePubspec(t, filepath.Join(filepath.Dir(appDir), "shared"), `
name = "shared"
version = "2.0.0"

[dependencies]
util = { path = "../util" }
`)

	err := c.runCheck(ctx, appDir)
	if !errors.Is(err, errors.ErrCodeOutOfDate) {
		t.Errorf("runCheck() error = %v, want OUT_OF_DATE", err)
	}
}

func TestDiffLockfile(t *testing.T) {
	appDir := testWorkspace(t)
	registry := newRegistry()
	w := newWalker(registry, cache.NewSession(), testLogger())
	cl, err := w.walk(appDir)
	if err != nil {
		t.Fatalf("walk() error: %v", err)
	}

	lockPath := filepath.Join(appDir, lock.Filename)
	if err := writeLockfile(lockPath, registry, cl); err != nil {
		t.Fatalf("writeLockfile() error: %v", err)
	}

	// A lockfile straight from the walk has nothing to report.
	lf, err := lock.Load(lockPath)
	if err != nil {
		t.Fatal(err)
	}
	problems, err := diffLockfile(lockPath, registry, cl, lf)
	if err != nil {
		t.Fatalf("diffLockfile() error: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("problems = %v, want none", problems)
	}

	tests := []struct {
		name   string
		mutate func(*lock.File)
		want   string
	}{
		{
			name:   "version drift",
			mutate: func(lf *lock.File) { lf.Packages["shared"].Version = "9.9.9" },
			want:   "shared is locked to 9.9.9 but resolves to 1.2.3",
		},
		{
			name:   "location drift",
			mutate: func(lf *lock.File) { lf.Packages["util"].Description["path"] = "../elsewhere" },
			want:   "util is locked at ../elsewhere but is declared at ../util",
		},
		{
			name:   "missing entry",
			mutate: func(lf *lock.File) { delete(lf.Packages, "tools") },
			want:   "tools is missing from the lockfile",
		},
		{
			name: "stale entry",
			mutate: func(lf *lock.File) {
				lf.Packages["zombie"] = &lock.Package{
					Version:     "1.0.0",
					Source:      "path",
					Description: map[string]any{"path": "../zombie", "relative": true},
				}
			},
			want: "zombie is locked but no longer required",
		},
		{
			name:   "source moved",
			mutate: func(lf *lock.File) { lf.Packages["shared"].Source = "hosted" },
			want:   `shared is locked to the "hosted" source`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf, err := lock.Load(lockPath)
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(lf)

			problems, err := diffLockfile(lockPath, registry, cl, lf)
			if err != nil {
				t.Fatalf("diffLockfile() error: %v", err)
			}
			if len(problems) == 0 {
				t.Fatal("diffLockfile() found nothing")
			}
			if joined := strings.Join(problems, "\n"); !strings.Contains(joined, tt.want) {
				t.Errorf("problems = %v, want one containing %q", problems, tt.want)
			}
		})
	}
}

// Records on sources this build does not carry cannot be verified and are
// not reported as stale.
func TestDiffLockfileIgnoresUnknownSources(t *testing.T) {
	appDir := testWorkspace(t)
	registry := newRegistry()
	w := newWalker(registry, cache.NewSession(), testLogger())
	cl, err := w.walk(appDir)
	if err != nil {
		t.Fatalf("walk() error: %v", err)
	}

	lockPath := filepath.Join(appDir, lock.Filename)
	if err := writeLockfile(lockPath, registry, cl); err != nil {
		t.Fatal(err)
	}
	lf, err := lock.Load(lockPath)
	if err != nil {
		t.Fatal(err)
	}

	lf.Packages["http"] = &lock.Package{
		Version:     "1.2.0",
		Source:      "hosted",
		Description: map[string]any{"name": "http", "url": "https://pub.dev"},
	}

	problems, err := diffLockfile(lockPath, registry, cl, lf)
	if err != nil {
		t.Fatalf("diffLockfile() error: %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("problems = %v, want none", problems)
	}
}
