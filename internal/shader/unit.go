package shader

import (
	"fmt"
	"strings"
)

// ParsedUnit is the input contract from the external parser collaborator:
// one JSON document per discovered shader source unit. The engine never
// sees shader grammar, only this shape.
type ParsedUnit struct {
	Name              string             `json:"name"`
	FileIdentity      string             `json:"fileIdentity"`
	Source            UnitSource         `json:"source,omitempty"`
	DeclaredBaseNames []string           `json:"declaredBaseNames"`
	Variables         []ParsedVariable    `json:"variables,omitempty"`
	Methods           []ParsedMethod      `json:"methods,omitempty"`
	Compositions      []ParsedComposition `json:"compositions,omitempty"`

	// ParseError is set by the loader when the external parser failed for
	// this unit. The unit is then excluded from edges and lookups but the
	// failure is surfaced as a MalformedUnit anomaly instead of aborting
	// the rebuild.
	ParseError string `json:"parseError,omitempty"`
}

// ParsedVariable is a variable or stream declaration as reported by the
// parser.
type ParsedVariable struct {
	Name      string         `json:"name"`
	TypeName  string         `json:"typeName"`
	IsStage   bool           `json:"isStage,omitempty"`
	IsStream  bool           `json:"isStream,omitempty"`
	IsCompose bool           `json:"isCompose,omitempty"`
	Location  SourceLocation `json:"location"`
}

// ParsedMethod is a method declaration as reported by the parser.
type ParsedMethod struct {
	Name       string            `json:"name"`
	ReturnType string            `json:"returnType"`
	Parameters []ParsedParameter `json:"parameters,omitempty"`
	IsOverride bool              `json:"isOverride,omitempty"`
	IsAbstract bool              `json:"isAbstract,omitempty"`
	IsStage    bool              `json:"isStage,omitempty"`
	Location   SourceLocation    `json:"location"`
}

// ParsedParameter is one method parameter.
type ParsedParameter struct {
	TypeName string `json:"typeName"`
	Name     string `json:"name"`
}

// ParsedComposition is a named, interface-like sub-shader dependency.
type ParsedComposition struct {
	Name     string         `json:"name"`
	TypeName string         `json:"typeName"`
	Location SourceLocation `json:"location"`
}

// NormalizeName is the single normalization applied to unit names before
// they become registry keys. Duplicate detection compares normalized names.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// Validate checks the programmer-error surface of a unit: a unit with a
// parse error is valid (it carries its own failure), everything else must
// have a non-empty name.
func (u *ParsedUnit) Validate() error {
	if u == nil {
		return fmt.Errorf("nil parsed unit")
	}
	if NormalizeName(u.Name) == "" && u.ParseError == "" {
		return fmt.Errorf("parsed unit %q has empty name", u.FileIdentity)
	}
	return nil
}

// Descriptor converts the parser output into a ShaderDescriptor, merging
// variables, methods and compositions into one flat member list. Streams
// are variables with IsStream set; compositions always carry IsCompose.
// The returned descriptor has no resolved edges.
func (u *ParsedUnit) Descriptor() *ShaderDescriptor {
	name := NormalizeName(u.Name)
	d := &ShaderDescriptor{
		Name:              name,
		FileIdentity:      u.FileIdentity,
		Source:            u.Source,
		DeclaredBaseNames: append([]string(nil), u.DeclaredBaseNames...),
	}
	if d.Source == "" {
		d.Source = SourceWorkspace
	}

	for _, v := range u.Variables {
		kind := KindVariable
		if v.IsStream {
			kind = KindStream
		}
		d.Members = append(d.Members, MemberDeclaration{
			Name:      v.Name,
			TypeName:  v.TypeName,
			Kind:      kind,
			IsStage:   v.IsStage,
			IsStream:  v.IsStream,
			IsCompose: v.IsCompose,
			Location:  v.Location,
			Owner:     name,
		})
	}

	for _, m := range u.Methods {
		d.Members = append(d.Members, MemberDeclaration{
			Name:       m.Name,
			TypeName:   m.ReturnType,
			Kind:       KindMethod,
			IsStage:    m.IsStage,
			IsOverride: m.IsOverride,
			IsAbstract: m.IsAbstract,
			Location:   m.Location,
			Owner:      name,
		})
	}

	for _, c := range u.Compositions {
		d.Members = append(d.Members, MemberDeclaration{
			Name:      c.Name,
			TypeName:  c.TypeName,
			Kind:      KindComposition,
			IsCompose: true,
			Location:  c.Location,
			Owner:     name,
		})
	}

	return d
}
