package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/lock"
	"github.com/lljwdbklb/pub/pkg/source"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Verify that pubspec.lock matches the declared dependencies",
		Long: `Re-resolve the path dependencies declared in pubspec.toml and compare the
result against pubspec.lock. The command fails when the lockfile is missing,
records a different version or location for a package, or pins packages that
are no longer required.

Lockfile records on sources this build does not carry are left alone: they
cannot be verified without the solver.

Examples:
  pub check           # verify the package in the current directory
  pub check ./myapp   # verify a specific package`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runCheck(cmd.Context(), dir)
		},
	}
}

// runCheck re-resolves the closure rooted at dir and diffs it against the
// lockfile.
func (c *CLI) runCheck(ctx context.Context, dir string) error {
	logger := loggerFromContext(ctx)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	lockPath := filepath.Join(absDir, lock.Filename)
	lf, err := lock.Load(lockPath)
	if err != nil {
		if errors.Is(err, errors.ErrCodeFileNotFound) {
			printInfo("No lockfile found")
			printNextStep("Create one", appName+" get "+dir)
		}
		return err
	}

	registry := newRegistry()
	w := newWalker(registry, cache.NewSession(), logger)
	cl, err := w.walk(absDir)
	if err != nil {
		return err
	}

	problems, err := diffLockfile(lockPath, registry, cl, lf)
	if err != nil {
		return err
	}

	if len(problems) > 0 {
		printWarning("Lockfile is out of date")
		for _, p := range problems {
			printDetail(p)
		}
		printNewline()
		printNextStep("Refresh it", appName+" get "+dir)
		return errors.New(errors.ErrCodeOutOfDate, "pubspec.lock does not match the declared dependencies")
	}

	printSuccess("Lockfile is up to date (%d packages)", len(lf.Packages))
	return nil
}

// diffLockfile compares the freshly resolved closure against the lockfile
// and describes every disagreement. Lockfile records on sources the registry
// does not carry are skipped: this build cannot resolve them, so it cannot
// contradict them either.
func diffLockfile(lockPath string, registry *source.Registry, cl *closure, lf *lock.File) ([]string, error) {
	rootDir := filepath.Dir(lockPath)
	var problems []string

	for _, name := range sortedPackageNames(cl) {
		pkg := cl.packages[name]
		rec, ok := lf.Packages[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is missing from the lockfile", name))
			continue
		}
		if rec.Source != pkg.id.Source() {
			problems = append(problems, fmt.Sprintf("%s is locked to the %q source but is declared on %q",
				name, rec.Source, pkg.id.Source()))
			continue
		}

		src := registry.Find(rec.Source)
		locked, err := src.ParseID(name, rec.Version, rec.Description, lockPath)
		if err != nil {
			return nil, err
		}

		if locked.Version != pkg.id.Version {
			problems = append(problems, fmt.Sprintf("%s is locked to %s but resolves to %s",
				name, locked.Version, pkg.id.Version))
		}
		if !src.Equal(locked.Description, pkg.id.Description) {
			problems = append(problems, fmt.Sprintf("%s is locked at %s but is declared at %s",
				name, src.Format(rootDir, locked.Description), src.Format(rootDir, pkg.id.Description)))
		}
	}

	var stale []string
	for name, rec := range lf.Packages {
		if _, ok := cl.packages[name]; ok {
			continue
		}
		if registry.Find(rec.Source) == nil {
			continue
		}
		stale = append(stale, name)
	}
	sort.Strings(stale)
	for _, name := range stale {
		problems = append(problems, fmt.Sprintf("%s is locked but no longer required", name))
	}

	return problems, nil
}
