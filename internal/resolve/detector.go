package resolve

import (
	"shaderscope/internal/graph"
	"shaderscope/internal/logging"
	"shaderscope/internal/registry"
	"shaderscope/internal/shader"
)

// DefaultSuggestionCap bounds each suggestion bucket for presentation.
const DefaultSuggestionCap = 8

// Detector finds structural defects in inheritance declarations and ranks
// base suggestions for undefined identifiers.
type Detector struct {
	reg    *registry.Registry
	index  *registry.MemberIndex
	chains *graph.ChainResolver

	// SuggestionCap bounds each bucket returned by SuggestBasesFor.
	SuggestionCap int
}

// NewDetector creates a detector over one graph build's outputs.
func NewDetector(reg *registry.Registry, index *registry.MemberIndex, chains *graph.ChainResolver) *Detector {
	return &Detector{
		reg:           reg,
		index:         index,
		chains:        chains,
		SuggestionCap: DefaultSuggestionCap,
	}
}

// IsRedundantBase reports whether candidate is a declared base of d that
// is already reachable through another direct base. The witness is the
// sibling base supplying the inheritance ("inherited via witness").
func (dt *Detector) IsRedundantBase(d *shader.ShaderDescriptor, candidate string) (witness string, redundant bool) {
	if d == nil || !d.DeclaresBase(candidate) {
		return "", false
	}
	return dt.chains.InheritedVia(d, candidate)
}

// IsOrphanedOverride reports whether m is marked override while no shader
// in its owner's ancestor chain declares a same-named method.
func (dt *Detector) IsOrphanedOverride(m shader.MemberDeclaration) bool {
	if !m.IsOverride {
		return false
	}
	owner, ok := dt.reg.TryGet(m.Owner)
	if !ok {
		// Owner excluded from resolution (duplicate or malformed unit):
		// nothing to check against.
		return false
	}
	for _, ancestor := range dt.chains.ResolveChain(owner) {
		for _, am := range ancestor.MembersNamed(m.Name) {
			if am.Kind == shader.KindMethod {
				return false
			}
		}
	}
	logging.ResolveDebug("orphaned override: %s.%s", m.Owner, m.Name)
	return true
}

// Suggestions are ranked candidate bases that would bring an undefined
// identifier into scope. Priority is DirectDefiners, then
// PopularInheritors, then WorkspaceInheritors.
type Suggestions struct {
	// DirectDefiners declare the member themselves.
	DirectDefiners []*shader.ShaderDescriptor

	// PopularInheritors make the member reachable through their own chain
	// without defining it, and are not already in the current shader's
	// chain or inheritance clause.
	PopularInheritors []*shader.ShaderDescriptor

	// WorkspaceInheritors is the subset of PopularInheritors that belong
	// to the user's own project rather than external libraries.
	WorkspaceInheritors []*shader.ShaderDescriptor
}

// SuggestBasesFor ranks shaders that would resolve undefinedName if added
// to current's inheritance clause. current may be nil when the identifier
// appears outside any known shader.
func (dt *Detector) SuggestBasesFor(undefinedName string, current *shader.ShaderDescriptor) Suggestions {
	var s Suggestions
	if shader.NormalizeName(undefinedName) == "" {
		return s
	}

	// Anything already contributing to current's scope is not a useful
	// suggestion.
	excluded := make(map[string]bool)
	if current != nil {
		excluded[current.Name] = true
		for _, b := range current.DeclaredBaseNames {
			excluded[shader.NormalizeName(b)] = true
		}
		for _, a := range dt.chains.ResolveChain(current) {
			excluded[a.Name] = true
		}
	}

	definers := make(map[string]bool)
	for _, d := range dt.reg.All() {
		if current != nil && d.Name == current.Name {
			continue
		}
		if d.DeclaresMember(undefinedName) {
			definers[d.Name] = true
			if len(s.DirectDefiners) < dt.cap() {
				s.DirectDefiners = append(s.DirectDefiners, d)
			}
		}
	}

	for _, d := range dt.reg.All() {
		if definers[d.Name] || excluded[d.Name] {
			continue
		}
		if !dt.reachesMember(d, undefinedName) {
			continue
		}
		if len(s.PopularInheritors) < dt.cap() {
			s.PopularInheritors = append(s.PopularInheritors, d)
		}
		if d.Source == shader.SourceWorkspace && len(s.WorkspaceInheritors) < dt.cap() {
			s.WorkspaceInheritors = append(s.WorkspaceInheritors, d)
		}
	}

	logging.ResolveDebug("SuggestBasesFor(%s): %d definers, %d inheritors, %d workspace",
		undefinedName, len(s.DirectDefiners), len(s.PopularInheritors), len(s.WorkspaceInheritors))
	return s
}

// reachesMember reports whether any ancestor of d declares the member.
func (dt *Detector) reachesMember(d *shader.ShaderDescriptor, name string) bool {
	for _, a := range dt.chains.ResolveChain(d) {
		if a.DeclaresMember(name) {
			return true
		}
	}
	return false
}

func (dt *Detector) cap() int {
	if dt.SuggestionCap <= 0 {
		return DefaultSuggestionCap
	}
	return dt.SuggestionCap
}
