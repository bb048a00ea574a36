package host

import (
	"log/slog"
	"sort"
	"sync"
)

// ElementType couples a sanitized type name with the descriptor all
// instances of that type share.
type ElementType struct {
	// Name is the registered type name, derived from the plugin URI by
	// SanitizeTypeName.
	Name string

	// Descriptor is the shared, immutable schema for this plugin kind.
	Descriptor *Descriptor
}

// NewElement creates a new uninitialized element of this type.
func (t *ElementType) NewElement(logger *slog.Logger) *Element {
	return NewElement(t.Descriptor, logger)
}

// Registry manages element type registration and lookup. Registration
// happens during the startup scan; lookups may come from any goroutine
// afterwards.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*ElementType
	logger *slog.Logger
}

// Global registry instance
var globalRegistry = NewRegistry(nil)

// DefaultRegistry returns the process-wide registry used when no explicit
// registry is passed to NewCatalog.
func DefaultRegistry() *Registry { return globalRegistry }

// NewRegistry creates an empty registry. A nil logger means slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		types:  make(map[string]*ElementType),
		logger: logger,
	}
}

// Register adds an element type. If the name is already taken the new type
// is skipped with a warning and Register reports false; the existing
// registration stays usable. A duplicate is never fatal to a scan.
func (r *Registry) Register(t *ElementType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[t.Name]; ok {
		r.logf().Warn("element type already registered, skipping",
			slog.String("name", t.Name),
			slog.String("existing", existing.Descriptor.URI),
			slog.String("skipped", t.Descriptor.URI))
		return false
	}
	r.types[t.Name] = t
	return true
}

// Get retrieves a registered element type by name.
func (r *Registry) Get(name string) (*ElementType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// List returns all registered element types sorted by name.
func (r *Registry) List() []*ElementType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]*ElementType, 0, len(r.types))
	for _, t := range r.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}

// Clear removes all registered types. This is primarily useful for testing.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = make(map[string]*ElementType)
}

func (r *Registry) logf() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// SanitizeTypeName maps a plugin URI into the restricted character set legal
// for type names: letters, digits, hyphen and plus. Every other byte becomes
// a hyphen. Distinct URIs may sanitize to the same name; the registry
// resolves such collisions by keeping the first registration.
func SanitizeTypeName(uri string) string {
	out := []byte(uri)
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '+':
		default:
			out[i] = '-'
		}
	}
	return string(out)
}
