// Package engine owns the live shader graph. A Session holds an immutable
// snapshot (registry, edges, member index, anomalies) behind a pointer
// swap, so queries stay lock-cheap and never observe a half-built graph.
package engine

import (
	"fmt"
	"sync"

	"shaderscope/internal/graph"
	"shaderscope/internal/logging"
	"shaderscope/internal/registry"
	"shaderscope/internal/resolve"
	"shaderscope/internal/shader"
)

// Options configure a Session at construction time.
type Options struct {
	// DirectParentsOnly controls tree adjacency: when true a shader is
	// attached only under bases it names itself that are not already
	// reachable through a sibling base.
	DirectParentsOnly bool

	// SuggestionCap bounds each bucket returned by Suggest. Zero means
	// the resolver default.
	SuggestionCap int
}

// snapshot is one fully built view of the workspace. Snapshots are
// immutable after construction; readers hold whichever pointer was
// current when they started.
type snapshot struct {
	reg       *registry.Registry
	result    *graph.Result
	members   *resolve.MemberResolver
	detector  *resolve.Detector
	anomalies []graph.Anomaly
}

// Session is the owned context object for one workspace. All mutation
// funnels through Rebuild/UpdateUnit; everything else reads the current
// snapshot and is total over structurally broken input.
type Session struct {
	opts Options

	mu   sync.RWMutex
	snap *snapshot

	// Last applied unit set, in discovery order. Keyed by FileIdentity so
	// a re-parse replaces in place and keeps its position for the
	// first-discovered-wins duplicate policy.
	units   []shader.ParsedUnit
	unitPos map[string]int

	// In-flight background rebuild, guarded separately from snap so
	// queries never wait on a rebuild.
	inflightMu sync.Mutex
	inflight   *inflightRebuild
}

// NewSession returns a Session with an empty but queryable snapshot.
func NewSession(opts Options) *Session {
	s := &Session{
		opts:    opts,
		unitPos: make(map[string]int),
	}
	s.snap = s.buildSnapshot(nil)
	return s
}

// Rebuild replaces the whole graph from the given unit set. The new
// snapshot is built off to the side and swapped in atomically; on any
// path the previous snapshot stays intact.
func (s *Session) Rebuild(units []shader.ParsedUnit) {
	timer := logging.StartTimer(logging.CategoryEngine, "rebuild")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.units = append([]shader.ParsedUnit(nil), units...)
	s.unitPos = make(map[string]int, len(units))
	for i, u := range s.units {
		s.unitPos[u.FileIdentity] = i
	}
	s.snap = s.buildSnapshot(s.units)

	timer.StopWithInfo()
	logging.Engine("rebuild complete: %d units, %d shaders, %d anomalies",
		len(units), s.snap.reg.Count(), len(s.snap.anomalies))
}

// UpdateUnit is the foreground edit path: the unit replaces any previous
// unit with the same FileIdentity (or is appended) and the graph is
// rebuilt synchronously so the next query reflects the edit.
func (s *Session) UpdateUnit(unit shader.ParsedUnit) error {
	if unit.FileIdentity == "" {
		return fmt.Errorf("update unit: empty file identity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.unitPos[unit.FileIdentity]; ok {
		s.units[i] = unit
	} else {
		s.unitPos[unit.FileIdentity] = len(s.units)
		s.units = append(s.units, unit)
	}
	s.snap = s.buildSnapshot(s.units)

	logging.Engine("unit updated: %s (%s)", unit.Name, unit.FileIdentity)
	return nil
}

// buildSnapshot indexes the unit set and runs the graph builder. Units
// that failed the external parser, or that fail validation, are reported
// as malformed and excluded; their siblings index normally.
func (s *Session) buildSnapshot(units []shader.ParsedUnit) *snapshot {
	reg := registry.New()
	var malformed []graph.Anomaly

	for _, u := range units {
		if err := u.Validate(); err != nil {
			malformed = append(malformed, graph.Anomaly{
				Kind:   graph.MalformedUnit,
				Shader: u.Name,
				Detail: fmt.Sprintf("%s: %v", u.FileIdentity, err),
			})
			continue
		}
		if u.ParseError != "" {
			malformed = append(malformed, graph.Anomaly{
				Kind:   graph.MalformedUnit,
				Shader: u.Name,
				Detail: fmt.Sprintf("%s: %s", u.FileIdentity, u.ParseError),
			})
			continue
		}
		if err := reg.AddOrReplace(u.Name, u.Descriptor()); err != nil {
			malformed = append(malformed, graph.Anomaly{
				Kind:   graph.MalformedUnit,
				Shader: u.Name,
				Detail: fmt.Sprintf("%s: %v", u.FileIdentity, err),
			})
		}
	}

	result := graph.NewBuilder(s.opts.DirectParentsOnly).Build(reg)

	detector := resolve.NewDetector(reg, result.Index, result.Chains)
	if s.opts.SuggestionCap > 0 {
		detector.SuggestionCap = s.opts.SuggestionCap
	}

	anomalies := make([]graph.Anomaly, 0, len(malformed)+len(result.Anomalies))
	anomalies = append(anomalies, malformed...)
	anomalies = append(anomalies, result.Anomalies...)

	return &snapshot{
		reg:       reg,
		result:    result,
		members:   resolve.NewMemberResolver(reg, result.Index, result.Chains),
		detector:  detector,
		anomalies: anomalies,
	}
}

func (s *Session) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Lookup returns the canonical descriptor for a shader name.
func (s *Session) Lookup(name string) (*shader.ShaderDescriptor, bool) {
	return s.current().reg.TryGet(name)
}

// Count reports how many shaders the current snapshot indexes.
func (s *Session) Count() int {
	return s.current().reg.Count()
}

// GetRoots returns the tree roots, sorted case-insensitively by name.
func (s *Session) GetRoots() []*shader.ShaderDescriptor {
	return s.current().result.Roots
}

// ResolveChain returns the full ancestor chain for a shader name, in
// resolution order. Unknown names yield an empty chain.
func (s *Session) ResolveChain(name string) []*shader.ShaderDescriptor {
	return s.current().result.Chains.ResolveChainByName(name)
}

// GetTreeChildren returns the tree-adjacent children of a shader.
func (s *Session) GetTreeChildren(name string) []*shader.ShaderDescriptor {
	snap := s.current()
	d, ok := snap.reg.TryGet(name)
	if !ok {
		return nil
	}
	return snap.reg.Resolve(d.TreeChildren)
}

// FindMember resolves a member name against a shader's scope.
func (s *Session) FindMember(memberName, shaderName string) (*resolve.MemberResolution, error) {
	return s.current().members.FindMemberByName(memberName, shaderName)
}

// Suggest ranks shaders that would bring an undefined identifier into
// scope for the named shader. scopeName may be empty.
func (s *Session) Suggest(memberName, scopeName string) resolve.Suggestions {
	snap := s.current()
	var current *shader.ShaderDescriptor
	if scopeName != "" {
		current, _ = snap.reg.TryGet(scopeName)
	}
	return snap.detector.SuggestBasesFor(memberName, current)
}

// IsRedundantBase reports whether candidate is a redundant declared base
// of the named shader, with the sibling base that supplies it.
func (s *Session) IsRedundantBase(shaderName, candidate string) (string, bool) {
	snap := s.current()
	d, ok := snap.reg.TryGet(shaderName)
	if !ok {
		return "", false
	}
	return snap.detector.IsRedundantBase(d, candidate)
}

// OrphanedOverrides scans every indexed shader for override methods whose
// full ancestor chain defines no same-named method.
func (s *Session) OrphanedOverrides() []shader.MemberDeclaration {
	snap := s.current()
	var orphans []shader.MemberDeclaration
	for _, d := range snap.reg.All() {
		for _, m := range d.Members {
			if snap.detector.IsOrphanedOverride(m) {
				orphans = append(orphans, m)
			}
		}
	}
	return orphans
}

// RedundantBase pairs a declared base with the sibling base that already
// supplies it.
type RedundantBase struct {
	Shader  string
	Base    string
	Witness string
}

// RedundantBases scans every indexed shader for declared bases already
// reachable through a sibling base.
func (s *Session) RedundantBases() []RedundantBase {
	snap := s.current()
	var out []RedundantBase
	for _, d := range snap.reg.All() {
		for _, b := range d.DeclaredBaseNames {
			if witness, ok := snap.detector.IsRedundantBase(d, b); ok {
				out = append(out, RedundantBase{Shader: d.Name, Base: b, Witness: witness})
			}
		}
	}
	return out
}

// Anomalies returns the structural problems recorded by the last rebuild.
func (s *Session) Anomalies() []graph.Anomaly {
	return s.current().anomalies
}

// Close cancels any in-flight background rebuild and waits for it.
func (s *Session) Close() {
	s.inflightMu.Lock()
	inflight := s.inflight
	s.inflight = nil
	s.inflightMu.Unlock()

	if inflight != nil {
		inflight.cancel()
		<-inflight.done
	}
}
