package source

// Registry holds the sources available to one resolution run, looked up by
// the source name a manifest dependency declares.
type Registry struct {
	sources []Source
}

// NewRegistry creates a registry over the given sources.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// Find returns the source with the given name, or nil if the registry does
// not carry it. Callers decide whether an unknown source is fatal or merely
// outside their scope.
func (r *Registry) Find(name string) Source {
	for _, s := range r.sources {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// All returns the registered sources in registration order.
func (r *Registry) All() []Source {
	return r.sources
}
