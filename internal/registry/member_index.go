package registry

import "shaderscope/internal/shader"

// MemberIndex maps member names to the shaders that declare them. Multiple
// declarations under one (name, owner) pair form an overload set. Like the
// registry, the index is built once per rebuild and read-only afterwards.
type MemberIndex struct {
	// byName: member name -> owner shader name -> declarations in
	// declaration order.
	byName map[string]map[string][]shader.MemberDeclaration

	// ownerOrder preserves the order in which owners were registered per
	// member name, so query results are deterministic.
	ownerOrder map[string][]string
}

// NewMemberIndex creates an empty member index.
func NewMemberIndex() *MemberIndex {
	return &MemberIndex{
		byName:     make(map[string]map[string][]shader.MemberDeclaration),
		ownerOrder: make(map[string][]string),
	}
}

// RegisterMember appends a declaration under (memberName, owner).
func (mi *MemberIndex) RegisterMember(memberName, owner string, decl shader.MemberDeclaration) {
	owners, ok := mi.byName[memberName]
	if !ok {
		owners = make(map[string][]shader.MemberDeclaration)
		mi.byName[memberName] = owners
	}
	if _, seen := owners[owner]; !seen {
		mi.ownerOrder[memberName] = append(mi.ownerOrder[memberName], owner)
	}
	owners[owner] = append(owners[owner], decl)
}

// Has reports whether any shader declares memberName, independent of
// reachability from any particular scope.
func (mi *MemberIndex) Has(memberName string) bool {
	return len(mi.byName[memberName]) > 0
}

// Candidates returns the owner -> declarations mapping for memberName.
// The returned map is the index's own storage; callers must not mutate it.
func (mi *MemberIndex) Candidates(memberName string) map[string][]shader.MemberDeclaration {
	return mi.byName[memberName]
}

// Owners returns the shaders declaring memberName in registration order.
func (mi *MemberIndex) Owners(memberName string) []string {
	return mi.ownerOrder[memberName]
}

// DeclaredBy returns the overload set declared by owner for memberName.
func (mi *MemberIndex) DeclaredBy(memberName, owner string) []shader.MemberDeclaration {
	owners, ok := mi.byName[memberName]
	if !ok {
		return nil
	}
	return owners[owner]
}
