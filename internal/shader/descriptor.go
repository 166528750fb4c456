// Package shader defines the descriptor model for shader source units:
// the unit of inheritance resolution. Descriptors are produced from the
// external parser's output (see unit.go) and owned by the registry; edge
// slices on a descriptor are written only during a graph rebuild.
package shader

import "fmt"

// MemberKind classifies a member declaration. The kind is supplied
// explicitly by the parser output contract, never inferred at runtime.
type MemberKind int

const (
	KindVariable MemberKind = iota
	KindStream
	KindMethod
	KindComposition
)

func (k MemberKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindStream:
		return "stream"
	case KindMethod:
		return "method"
	case KindComposition:
		return "composition"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SourceLocation is a 1-based line/column pair. Navigation only; the
// resolution algorithms never read it.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// MemberDeclaration is a single member declared by a shader: a variable,
// a per-stage stream variable, a method, or a composition.
type MemberDeclaration struct {
	Name     string
	TypeName string // for methods: the return type
	Kind     MemberKind

	IsStage    bool
	IsStream   bool
	IsCompose  bool
	IsOverride bool
	IsAbstract bool

	Location SourceLocation

	// Owner is the name of the declaring shader, resolved through the
	// registry when the descriptor itself is needed.
	Owner string
}

// UnitSource tags where a unit came from. Workspace units belong to the
// user's own project; external units come from libraries or package caches.
type UnitSource string

const (
	SourceWorkspace UnitSource = "workspace"
	SourceExternal  UnitSource = "external"
)

// ShaderDescriptor is one shader source unit. Name is the identity key in
// the registry. DirectBases, DirectDerived and TreeChildren hold shader
// names, not pointers: they are resolved through the registry arena at
// query time, which keeps the edge set free of reference cycles and makes
// swapping in a freshly built graph atomic.
type ShaderDescriptor struct {
	Name         string
	FileIdentity string
	Source       UnitSource

	// DeclaredBaseNames preserves the inheritance clause exactly as
	// written, in order, including names that never resolve.
	DeclaredBaseNames []string

	Members []MemberDeclaration

	// Resolved edges, written exclusively by the graph builder.
	DirectBases   []string
	DirectDerived []string
	TreeChildren  []string
}

// ResetEdges clears all resolved edges. The builder calls this at the
// start of every rebuild so stale edges from a previous descriptor set
// can never leak into the new graph.
func (d *ShaderDescriptor) ResetEdges() {
	d.DirectBases = nil
	d.DirectDerived = nil
	d.TreeChildren = nil
}

// DeclaresBase reports whether name literally appears in the shader's own
// inheritance clause.
func (d *ShaderDescriptor) DeclaresBase(name string) bool {
	for _, b := range d.DeclaredBaseNames {
		if b == name {
			return true
		}
	}
	return false
}

// MembersNamed returns every member declaration with the given name, in
// declaration order. Multiple results form an overload set.
func (d *ShaderDescriptor) MembersNamed(name string) []MemberDeclaration {
	var out []MemberDeclaration
	for _, m := range d.Members {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// DeclaresMember reports whether the shader itself declares a member with
// the given name.
func (d *ShaderDescriptor) DeclaresMember(name string) bool {
	for _, m := range d.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}
