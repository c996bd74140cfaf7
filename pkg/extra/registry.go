package extra

// The registry of "extra output" kinds. Each kind (psf, weight, badpix,
// truth, ...) registers a builder prototype at process startup; a run's
// output spec then selects which of them are active.

import(
	"sync"
)

// A Prototype makes a fresh Builder instance for one (kind, file) pair.
// Builders hold per-file workspace, so they are never shared across files.
type Prototype func() Builder

// Registry maps kind names to builder prototypes. Registration order is
// preserved and used for every hook fan-out, so builder side effects happen
// in the same sequence run after run.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	protos map[string]Prototype
}

func NewRegistry() *Registry {
	return &Registry{protos: map[string]Prototype{}}
}

// Register installs a prototype under name. Re-registering a name overwrites
// the prototype but keeps the name's original position in iteration order.
func (r *Registry)Register(name string, proto Prototype) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.protos[name]; !exists {
		r.names = append(r.names, name)
	}
	r.protos[name] = proto
}

func (r *Registry)Lookup(name string) (Prototype, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.protos[name]
	return p, ok
}

// ActiveKinds returns the registered kind names that also appear in the
// output spec, in registration order. Spec keys with no registered builder
// are silently ignored, so configs can carry fields for kinds this build
// doesn't know about.
func (r *Registry)ActiveKinds(spec *OutputSpec) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var active []string
	for _, name := range r.names {
		if _, ok := spec.Kinds[name]; ok {
			active = append(active, name)
		}
	}
	return active
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry that RegisterExtraOutput
// feeds. Coordinators take a registry by reference, so tests can use their
// own.
func DefaultRegistry() *Registry { return defaultRegistry }

// RegisterExtraOutput installs an output kind in the process-wide registry.
// Idempotent overwrite by name.
func RegisterExtraOutput(name string, proto Prototype) {
	defaultRegistry.Register(name, proto)
}
