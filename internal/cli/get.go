package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/lock"
	"github.com/lljwdbklb/pub/pkg/observability"
	"github.com/lljwdbklb/pub/pkg/source"
)

// getOpts holds the command-line flags for the get command.
type getOpts struct {
	out string // link directory (default <dir>/packages)
}

// getCommand creates the get command.
func (c *CLI) getCommand() *cobra.Command {
	opts := getOpts{}

	cmd := &cobra.Command{
		Use:   "get [dir]",
		Short: "Resolve path dependencies and link them into the workspace",
		Long: `Resolve the path dependencies declared in pubspec.toml, including
transitive ones, link each resolved package into the workspace, and write
pubspec.lock next to the root manifest.

Dependencies on sources this build does not carry (e.g. hosted packages)
are skipped with a warning; resolving them is the solver's job.

Examples:
  pub get                # resolve the package in the current directory
  pub get ./myapp        # resolve a specific package
  pub get -o .deps       # place links under .deps/ instead of packages/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runGet(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "directory for package links (default <dir>/packages)")

	return cmd
}

// runGet resolves the closure rooted at dir, links every resolved package,
// and writes the lockfile.
func (c *CLI) runGet(ctx context.Context, dir string, opts getOpts) error {
	logger := loggerFromContext(ctx)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	registry := newRegistry()
	session := cache.NewSession()
	logger.Debugf("Resolution session %s", session.ID())

	w := newWalker(registry, session, logger)

	spinner := newSpinnerWithContext(ctx, "Resolving dependencies...")
	spinner.Start()
	prog := newProgress(logger)
	cl, err := w.walk(absDir)
	if err != nil {
		spinner.StopWithError("Resolution failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Resolved %d packages", len(cl.packages)))

	outDir := opts.out
	if outDir == "" {
		outDir = filepath.Join(absDir, "packages")
	}

	for _, name := range cl.order {
		pkg := cl.packages[name]
		bound := w.boundFor(registry.Find(pkg.id.Source()))
		linkPath := filepath.Join(outDir, name)
		err := bound.Get(pkg.id, linkPath)
		observability.Link().OnLink(name, linkPath, err)
		if err != nil {
			return err
		}
	}

	lockPath := filepath.Join(absDir, lock.Filename)
	if err := writeLockfile(lockPath, registry, cl); err != nil {
		return err
	}

	if len(cl.packages) == 0 {
		printInfo("No path dependencies found")
	} else {
		printSuccess("Got %d path packages", len(cl.packages))
		for _, name := range cl.order {
			printFile(filepath.Join(outDir, name))
		}
	}
	printKeyValue("Lockfile", lockPath)

	if len(cl.skipped) > 0 {
		printNewline()
		printWarning("Skipped %d dependencies on unavailable sources", len(cl.skipped))
		for _, entry := range cl.skipped {
			printDetail(entry)
		}
	}

	printNewline()
	printNextStep("Inspect the dependency tree", appName+" deps "+dir)

	return nil
}

// writeLockfile serializes the resolved closure into a lockfile at path.
// Descriptor records are relativized against the lockfile's own directory,
// so a checked-in lockfile stays valid wherever the tree is cloned.
func writeLockfile(path string, registry *source.Registry, cl *closure) error {
	dir := filepath.Dir(path)

	f := &lock.File{
		Version:  lock.CurrentVersion,
		Packages: make(map[string]*lock.Package, len(cl.packages)),
	}
	for name, pkg := range cl.packages {
		src := registry.Find(pkg.id.Source())
		desc, err := src.Serialize(dir, pkg.id.Description)
		if err != nil {
			return err
		}
		f.Packages[name] = &lock.Package{
			Version:     pkg.id.Version,
			Source:      pkg.id.Source(),
			Description: desc,
		}
	}

	return lock.Save(path, f)
}
