package filter

import (
	"fmt"
	"maps"
	"slices"

	"github.com/s0up4200/siftapi/sift"
)

// Manager holds named filters, typically the presets from the config file
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Compile compiles an ad-hoc expression with the manager's compiler
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	return m.compiler.Compile(expression)
}

// RegisterFilters compiles and registers filters by name. Nothing is
// registered if any expression fails to compile.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expression := range filters {
		f, err := m.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = f
	}

	maps.Copy(m.filters, compiled)
	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, error) {
	f, ok := m.filters[name]
	if !ok {
		return nil, &UnknownPresetError{Name: name}
	}
	return f, nil
}

// Filters returns a copy of the registered filters
func (m *Manager) Filters() map[string]CompiledFilter {
	return maps.Clone(m.filters)
}

// ListFilters returns all registered filter names in sorted order
func (m *Manager) ListFilters() []string {
	return slices.Sorted(maps.Keys(m.filters))
}

// Apply returns the sifts matched by f, in their original order
func Apply(f Filter, sifts []sift.Sift) []sift.Sift {
	if f == nil {
		return sifts
	}

	matched := make([]sift.Sift, 0, len(sifts))
	for _, s := range sifts {
		if f.Match(s) {
			matched = append(matched, s)
		}
	}
	return matched
}
