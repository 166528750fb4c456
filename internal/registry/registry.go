// Package registry owns the shader descriptor arena and the member index.
// The registry is the single source of truth for "which descriptor does
// this name refer to"; graph edges everywhere else are stored as names and
// resolved through it.
//
// The registry is not safe for concurrent mutation. All mutation happens
// inside a rebuild, which constructs a fresh registry and swaps it in as
// part of an immutable snapshot (see internal/engine).
package registry

import (
	"fmt"

	"shaderscope/internal/logging"
	"shaderscope/internal/shader"
)

// Duplicate records a discovered unit whose normalized name collided with
// an already-registered descriptor. Duplicates are kept for diagnostic
// display only and never enter graph or member resolution.
type Duplicate struct {
	Name         string
	FileIdentity string
	Descriptor   *shader.ShaderDescriptor
}

// Registry is the name-keyed descriptor arena.
type Registry struct {
	byName     map[string]*shader.ShaderDescriptor
	order      []string // insertion order, for deterministic iteration
	duplicates []Duplicate
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*shader.ShaderDescriptor),
	}
}

// AddOrReplace registers a descriptor under its normalized name. It is the
// registry's only mutator.
//
// Collision policy (first-discovered wins): a second unit with the same
// name but a different FileIdentity is recorded as a duplicate and the
// canonical descriptor is left untouched, so results do not depend on
// rescan order. A unit with the same FileIdentity is a re-parse: its
// member set and base declarations replace the old ones wholesale while
// the identity key is preserved.
func (r *Registry) AddOrReplace(name string, d *shader.ShaderDescriptor) error {
	key := shader.NormalizeName(name)
	if key == "" {
		return fmt.Errorf("registry: empty shader name")
	}
	if d == nil {
		return fmt.Errorf("registry: nil descriptor for %q", key)
	}

	existing, ok := r.byName[key]
	if !ok {
		r.byName[key] = d
		r.order = append(r.order, key)
		return nil
	}

	if existing.FileIdentity != d.FileIdentity {
		logging.RegistryWarn("duplicate shader name %q: keeping %s, recording %s for diagnostics",
			key, existing.FileIdentity, d.FileIdentity)
		r.duplicates = append(r.duplicates, Duplicate{
			Name:         key,
			FileIdentity: d.FileIdentity,
			Descriptor:   d,
		})
		return nil
	}

	// Re-parse of the same unit: replace wholesale, identity preserved.
	r.byName[key] = d
	return nil
}

// TryGet returns the canonical descriptor for name, if any.
func (r *Registry) TryGet(name string) (*shader.ShaderDescriptor, bool) {
	d, ok := r.byName[shader.NormalizeName(name)]
	return d, ok
}

// Contains reports whether a canonical descriptor exists for name.
func (r *Registry) Contains(name string) bool {
	_, ok := r.byName[shader.NormalizeName(name)]
	return ok
}

// Clear drops every descriptor and duplicate record.
func (r *Registry) Clear() {
	r.byName = make(map[string]*shader.ShaderDescriptor)
	r.order = nil
	r.duplicates = nil
}

// Count returns the number of canonical descriptors.
func (r *Registry) Count() int {
	return len(r.byName)
}

// All returns every canonical descriptor in discovery order.
func (r *Registry) All() []*shader.ShaderDescriptor {
	out := make([]*shader.ShaderDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Duplicates returns the excluded colliding units, in discovery order.
func (r *Registry) Duplicates() []Duplicate {
	return r.duplicates
}

// Resolve maps a list of shader names to descriptors, skipping names with
// no canonical entry. Used by query paths that hold name-based edges.
func (r *Registry) Resolve(names []string) []*shader.ShaderDescriptor {
	out := make([]*shader.ShaderDescriptor, 0, len(names))
	for _, n := range names {
		if d, ok := r.byName[n]; ok {
			out = append(out, d)
		}
	}
	return out
}
