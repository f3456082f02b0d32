// Package graph defines the serialization types for resolved dependency
// closures.
//
// A Report is the machine-readable form of one resolution run: the root
// package with its direct dependencies, plus every package in the closure
// with its pinned version, source, and location. The format is stable and
// meant for tooling: packages are sorted by name and dependency lists are
// always present, never null.
package graph

// Report is the canonical serialization of a resolved dependency closure.
type Report struct {
	Root     Root      `json:"root"`
	Packages []Package `json:"packages"`
}

// Root describes the package the closure was resolved for.
type Root struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Dependencies []string `json:"dependencies"`
}

// Package is one resolved package in the closure. Location is the package's
// path rendered relative to the root directory, in the form suitable for
// display and diffing.
type Package struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Source       string   `json:"source"`
	Location     string   `json:"location"`
	Dependencies []string `json:"dependencies"`
}

// Find returns the report entry for name, if present.
func (r Report) Find(name string) (Package, bool) {
	for _, p := range r.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}
