// Package resolve answers member-scope questions over a built graph:
// which ancestors supply a member name in a shader's scope, and which
// structural defects (redundant bases, orphaned overrides, unknown
// identifiers) the inheritance declarations carry.
package resolve

import (
	"fmt"

	"shaderscope/internal/graph"
	"shaderscope/internal/logging"
	"shaderscope/internal/registry"
	"shaderscope/internal/shader"
)

// MemberResolution is the answer to "who defines member X in scope of
// shader S".
type MemberResolution struct {
	// Local holds S's own declarations of the name, if any.
	Local []shader.MemberDeclaration

	// Mems holds the declaration list of the winning ancestor: the FIRST
	// shader in S's resolution chain that declares the name. For two
	// direct bases both defining the name this means the earlier one in
	// the inheritance clause wins; later definers still appear in
	// ScopedShaders but do not override the winner.
	Mems []shader.MemberDeclaration

	// ScopedShaders lists every chain ancestor that declares the name, in
	// chain order, followed by every direct derived shader that
	// re-declares it (candidate overrides, annotation only).
	ScopedShaders []*shader.ShaderDescriptor

	// Found is true iff the name exists anywhere in the member index,
	// independent of reachability from S.
	Found bool
}

// MemberResolver resolves member names against a built graph. It is a
// pure query layer: structurally broken inheritance data never makes it
// fail, only nil/empty identifiers do.
type MemberResolver struct {
	reg    *registry.Registry
	index  *registry.MemberIndex
	chains *graph.ChainResolver
}

// NewMemberResolver creates a resolver over a registry, its member index
// and its chain resolver, all produced by the same graph build.
func NewMemberResolver(reg *registry.Registry, index *registry.MemberIndex, chains *graph.ChainResolver) *MemberResolver {
	return &MemberResolver{reg: reg, index: index, chains: chains}
}

// FindMember resolves name in the scope of d.
func (r *MemberResolver) FindMember(name string, d *shader.ShaderDescriptor) (*MemberResolution, error) {
	if shader.NormalizeName(name) == "" {
		return nil, fmt.Errorf("resolve: empty member name")
	}
	if d == nil {
		return nil, fmt.Errorf("resolve: nil shader")
	}

	res := &MemberResolution{
		Local: r.index.DeclaredBy(name, d.Name),
		Found: r.index.Has(name),
	}

	// Ancestors in chain order. The first declaring ancestor wins the
	// member list; every declaring ancestor enters the scope annotation.
	for _, ancestor := range r.chains.ResolveChain(d) {
		decls := r.index.DeclaredBy(name, ancestor.Name)
		if len(decls) == 0 {
			continue
		}
		res.ScopedShaders = append(res.ScopedShaders, ancestor)
		if res.Mems == nil {
			res.Mems = decls
		}
	}

	// Direct derived shaders that re-declare the name are candidate
	// overrides; they annotate the scope but never supply Mems.
	for _, derivedName := range d.DirectDerived {
		if len(r.index.DeclaredBy(name, derivedName)) == 0 {
			continue
		}
		derived, ok := r.reg.TryGet(derivedName)
		if !ok {
			continue
		}
		res.ScopedShaders = append(res.ScopedShaders, derived)
	}

	logging.ResolveDebug("FindMember(%s, %s): found=%v local=%d scoped=%d",
		name, d.Name, res.Found, len(res.Local), len(res.ScopedShaders))
	return res, nil
}

// FindMemberByName is FindMember with the shader looked up by name.
func (r *MemberResolver) FindMemberByName(name, shaderName string) (*MemberResolution, error) {
	if shader.NormalizeName(name) == "" {
		return nil, fmt.Errorf("resolve: empty member name")
	}
	if shader.NormalizeName(shaderName) == "" {
		return nil, fmt.Errorf("resolve: empty shader name")
	}
	d, ok := r.reg.TryGet(shaderName)
	if !ok {
		// Unknown scope is not an error: the name may still exist
		// globally, there is just nothing scoped to report.
		return &MemberResolution{Found: r.index.Has(name)}, nil
	}
	return r.FindMember(name, d)
}
