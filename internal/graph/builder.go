package graph

import (
	"fmt"
	"sort"
	"strings"

	"shaderscope/internal/logging"
	"shaderscope/internal/registry"
	"shaderscope/internal/shader"
)

// Builder links declared base names into direct ancestor/descendant edges
// and computes the display tree. A single Build call recomputes everything
// for the full descriptor set; edges are never patched incrementally.
type Builder struct {
	// DirectParentsOnly controls the display tree: when true, a shader is
	// not shown under a base that is redundantly declared (the same
	// ancestor is already reachable through a sibling base). When false,
	// the shader appears under every base it directly declares.
	DirectParentsOnly bool
}

// Result is the outcome of one graph build over a registry.
type Result struct {
	Index     *registry.MemberIndex
	Chains    *ChainResolver
	Roots     []*shader.ShaderDescriptor
	Anomalies []Anomaly
}

// NewBuilder creates a builder with the given tree policy.
func NewBuilder(directParentsOnly bool) *Builder {
	return &Builder{DirectParentsOnly: directParentsOnly}
}

// Build resolves all edges, indexes all members and detects structural
// anomalies for every canonical descriptor in reg.
func (b *Builder) Build(reg *registry.Registry) *Result {
	timer := logging.StartTimer(logging.CategoryGraph, fmt.Sprintf("graph build (%d shaders)", reg.Count()))
	defer timer.Stop()

	res := &Result{
		Index:  registry.NewMemberIndex(),
		Chains: NewChainResolver(reg),
	}

	all := reg.All()

	// A rebuild starts from a clean slate: stale edges from a previous
	// descriptor set must never survive.
	for _, d := range all {
		d.ResetEdges()
	}

	// Direct edges, mirrored in both directions.
	for _, d := range all {
		seen := make(map[string]bool)
		for _, baseName := range d.DeclaredBaseNames {
			key := shader.NormalizeName(baseName)
			if key == "" {
				continue
			}
			base, ok := reg.TryGet(key)
			if !ok {
				logging.GraphWarn("shader %s declares unresolved base %q", d.Name, baseName)
				res.Anomalies = append(res.Anomalies, Anomaly{
					Kind:    MissingBase,
					Shader:  d.Name,
					Subject: key,
					Detail:  fmt.Sprintf("declared base %q has no known shader", baseName),
				})
				continue
			}
			if seen[key] {
				continue // same base declared twice creates one edge
			}
			seen[key] = true
			d.DirectBases = append(d.DirectBases, base.Name)
			base.DirectDerived = append(base.DirectDerived, d.Name)
		}
	}

	// Duplicate units excluded by the registry are still reportable.
	for _, dup := range reg.Duplicates() {
		res.Anomalies = append(res.Anomalies, Anomaly{
			Kind:    DuplicateName,
			Shader:  dup.Name,
			Subject: dup.FileIdentity,
			Detail:  "unit excluded from resolution: name already registered",
		})
	}

	res.Anomalies = append(res.Anomalies, b.detectCycles(reg, all)...)
	b.buildTree(reg, all, res.Chains)

	// Roots: no resolved direct base, name-sorted case-insensitively.
	for _, d := range all {
		if len(d.DirectBases) == 0 {
			res.Roots = append(res.Roots, d)
		}
	}
	sort.Slice(res.Roots, func(i, j int) bool {
		return strings.ToLower(res.Roots[i].Name) < strings.ToLower(res.Roots[j].Name)
	})

	// Member index over canonical descriptors only.
	for _, d := range all {
		for _, m := range d.Members {
			res.Index.RegisterMember(m.Name, d.Name, m)
		}
	}

	logging.GraphDebug("build complete: %d roots, %d anomalies", len(res.Roots), len(res.Anomalies))
	return res
}

// buildTree computes display-tree adjacency per the DirectParentsOnly
// policy. Tree edges are always a subset of direct edges.
func (b *Builder) buildTree(reg *registry.Registry, all []*shader.ShaderDescriptor, chains *ChainResolver) {
	for _, d := range all {
		for _, baseName := range d.DirectBases {
			if b.DirectParentsOnly {
				if via, redundant := chains.InheritedVia(d, baseName); redundant {
					logging.GraphDebug("tree: hiding %s under %s (inherited via %s)", d.Name, baseName, via)
					continue
				}
			}
			base, ok := reg.TryGet(baseName)
			if !ok {
				continue
			}
			base.TreeChildren = append(base.TreeChildren, d.Name)
		}
	}
}

// detectCycles runs a colored DFS over base edges and reports each back
// edge once. Resolution never depends on this - the chain resolver's
// visited set already guarantees termination - but a cycle is a defect the
// consumer should see.
func (b *Builder) detectCycles(reg *registry.Registry, all []*shader.ShaderDescriptor) []Anomaly {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS stack
		black = 2 // fully explored
	)
	color := make(map[string]int, len(all))
	var anomalies []Anomaly

	var visit func(d *shader.ShaderDescriptor)
	visit = func(d *shader.ShaderDescriptor) {
		color[d.Name] = gray
		for _, baseName := range d.DirectBases {
			base, ok := reg.TryGet(baseName)
			if !ok {
				continue
			}
			switch color[base.Name] {
			case white:
				visit(base)
			case gray:
				logging.GraphWarn("inheritance cycle: %s -> %s", d.Name, base.Name)
				anomalies = append(anomalies, Anomaly{
					Kind:    CycleDetected,
					Shader:  d.Name,
					Subject: base.Name,
					Detail:  fmt.Sprintf("base edge %s -> %s closes an inheritance cycle", d.Name, base.Name),
				})
			}
		}
		color[d.Name] = black
	}

	for _, d := range all {
		if color[d.Name] == white {
			visit(d)
		}
	}
	return anomalies
}
