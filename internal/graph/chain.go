package graph

import (
	"shaderscope/internal/registry"
	"shaderscope/internal/shader"
)

// ChainResolver computes the deduplicated, ordered transitive ancestor
// list of a shader. Resolution walks name-based edges through the
// registry, so a resolver is only valid for the registry it was built
// against.
type ChainResolver struct {
	reg *registry.Registry
}

// NewChainResolver creates a resolver over reg.
func NewChainResolver(reg *registry.Registry) *ChainResolver {
	return &ChainResolver{reg: reg}
}

// ResolveChain returns the full ancestor chain of d, most direct ancestors
// first, each ancestor exactly once, never including d itself. The visited
// set terminates the walk under diamond inheritance and, defensively,
// under cycles in the base declarations.
func (c *ChainResolver) ResolveChain(d *shader.ShaderDescriptor) []*shader.ShaderDescriptor {
	if d == nil {
		return nil
	}
	visited := map[string]bool{d.Name: true}
	var chain []*shader.ShaderDescriptor
	c.walk(d, visited, &chain)
	return chain
}

// ResolveChainByName is ResolveChain for a shader looked up by name. An
// unknown name yields an empty chain; chain queries are total.
func (c *ChainResolver) ResolveChainByName(name string) []*shader.ShaderDescriptor {
	d, ok := c.reg.TryGet(name)
	if !ok {
		return nil
	}
	return c.ResolveChain(d)
}

// walk emits each direct base in declared order, then that base's own
// chain, skipping anything already emitted.
func (c *ChainResolver) walk(d *shader.ShaderDescriptor, visited map[string]bool, chain *[]*shader.ShaderDescriptor) {
	for _, baseName := range d.DirectBases {
		if visited[baseName] {
			continue
		}
		base, ok := c.reg.TryGet(baseName)
		if !ok {
			continue
		}
		visited[baseName] = true
		*chain = append(*chain, base)
		c.walk(base, visited, chain)
	}
}

// ChainContains reports whether name appears in the ancestor chain of d.
func (c *ChainResolver) ChainContains(d *shader.ShaderDescriptor, name string) bool {
	for _, a := range c.ResolveChain(d) {
		if a.Name == name {
			return true
		}
	}
	return false
}

// InheritedVia returns a direct base of d, other than candidate, whose own
// ancestor chain already contains candidate. A non-empty witness means the
// declared base candidate is redundant ("inherited via witness").
func (c *ChainResolver) InheritedVia(d *shader.ShaderDescriptor, candidate string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, otherName := range d.DirectBases {
		if otherName == candidate {
			continue
		}
		other, ok := c.reg.TryGet(otherName)
		if !ok {
			continue
		}
		if c.ChainContains(other, candidate) {
			return otherName, true
		}
	}
	return "", false
}
