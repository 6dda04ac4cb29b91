// Package registry resolves the functions formulas may call.
package registry

import (
	"sort"
	"strings"

	"github.com/katsu/eqlang/types"
)

// Registry maps case-insensitive names to functions.
type Registry struct {
	funcs map[string]types.Function
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]types.Function)}
}

// Register adds a function, replacing any previous one with the same
// name in any case.
func (r *Registry) Register(fn types.Function) {
	r.funcs[strings.ToLower(fn.Name())] = fn
}

// Lookup returns the function registered under name, compared
// case-insensitively, or nil.
func (r *Registry) Lookup(name string) types.Function {
	return r.funcs[strings.ToLower(name)]
}

// All returns every registered function sorted by name.
func (r *Registry) All() []types.Function {
	out := make([]types.Function, 0, len(r.funcs))
	for _, fn := range r.funcs {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
