package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lljwdbklb/pub/pkg/cache"
	"github.com/lljwdbklb/pub/pkg/errors"
	"github.com/lljwdbklb/pub/pkg/graph"
	"github.com/lljwdbklb/pub/pkg/source"
)

// depsOpts holds the command-line flags for the deps command.
type depsOpts struct {
	style   string // tree or list
	jsonOut bool
}

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	opts := depsOpts{style: "tree"}

	cmd := &cobra.Command{
		Use:   "deps [dir]",
		Short: "Show the resolved local dependency tree",
		Long: `Resolve the path dependencies declared in pubspec.toml and print the
resulting dependency tree with pinned versions.

Examples:
  pub deps                 # tree of the package in the current directory
  pub deps --style list    # flat sorted list with locations
  pub deps --json          # machine-readable output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runDeps(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.style, "style", opts.style, "output style: tree (default), list")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "machine-readable JSON output")

	return cmd
}

// runDeps resolves the closure rooted at dir and prints it.
func (c *CLI) runDeps(ctx context.Context, dir string, opts depsOpts) error {
	logger := loggerFromContext(ctx)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	registry := newRegistry()
	w := newWalker(registry, cache.NewSession(), logger)
	cl, err := w.walk(absDir)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeDepsJSON(os.Stdout, registry, cl, absDir)
	}

	switch opts.style {
	case "tree":
		fmt.Print(renderTree(cl))
	case "list":
		fmt.Print(renderList(registry, cl, absDir))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown style %q (available: tree, list)", opts.style)
	}
	return nil
}

// renderTree renders the closure as a tree rooted at the root package. Each
// package expands at its first appearance only; later appearances repeat the
// name and version with a (*) marker.
func renderTree(cl *closure) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(cl.root.Name) + " " + StyleDim.Render(cl.root.Version) + "\n")

	expanded := make(map[string]bool)
	var walk func(names []string, prefix string)
	walk = func(names []string, prefix string) {
		for i, name := range names {
			glyph, childPrefix := "├── ", prefix+"│   "
			if i == len(names)-1 {
				glyph, childPrefix = "└── ", prefix+"    "
			}

			pkg := cl.packages[name]
			line := prefix + StyleDim.Render(glyph) + StyleValue.Render(name) + " " + StyleNumber.Render(pkg.id.Version)
			if expanded[name] {
				b.WriteString(line + StyleDim.Render(" (*)") + "\n")
				continue
			}
			expanded[name] = true
			b.WriteString(line + "\n")
			walk(pkg.deps, childPrefix)
		}
	}
	walk(cl.rootDeps, "")

	return b.String()
}

// renderList renders the closure as a flat sorted list with each package's
// location formatted relative to the root directory.
func renderList(registry *source.Registry, cl *closure, rootDir string) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(cl.root.Name) + " " + StyleDim.Render(cl.root.Version) + "\n")

	for _, name := range sortedPackageNames(cl) {
		pkg := cl.packages[name]
		src := registry.Find(pkg.id.Source())
		location := src.Format(rootDir, pkg.id.Description)
		b.WriteString(StyleValue.Render(name) + " " + StyleNumber.Render(pkg.id.Version) + " " + StyleDim.Render(location) + "\n")
	}

	return b.String()
}

// buildDepsReport flattens the closure for JSON output, packages sorted by
// name. Locations are formatted relative to the root directory.
func buildDepsReport(registry *source.Registry, cl *closure, rootDir string) graph.Report {
	report := graph.Report{
		Root: graph.Root{
			Name:         cl.root.Name,
			Version:      cl.root.Version,
			Dependencies: append([]string{}, cl.rootDeps...),
		},
		Packages: make([]graph.Package, 0, len(cl.packages)),
	}

	for _, name := range sortedPackageNames(cl) {
		pkg := cl.packages[name]
		src := registry.Find(pkg.id.Source())
		report.Packages = append(report.Packages, graph.Package{
			Name:         name,
			Version:      pkg.id.Version,
			Source:       pkg.id.Source(),
			Location:     src.Format(rootDir, pkg.id.Description),
			Dependencies: append([]string{}, pkg.deps...),
		})
	}

	return report
}

// writeDepsJSON writes the closure as indented JSON.
func writeDepsJSON(w io.Writer, registry *source.Registry, cl *closure, rootDir string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildDepsReport(registry, cl, rootDir))
}

// sortedPackageNames returns the closure's package names in sorted order.
func sortedPackageNames(cl *closure) []string {
	names := make([]string, 0, len(cl.packages))
	for name := range cl.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
