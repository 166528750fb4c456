package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaderscope/internal/shader"
)

// diamondUnits reach D through both B and C, and Leaf redeclares a base
// it already inherits. Exercises both tree policies.
func diamondUnits() []shader.ParsedUnit {
	return []shader.ParsedUnit{
		{Name: "D", FileIdentity: "D.sdsl",
			Variables: []shader.ParsedVariable{{Name: "Shared", TypeName: "float"}}},
		{Name: "B", FileIdentity: "B.sdsl", DeclaredBaseNames: []string{"D"}},
		{Name: "C", FileIdentity: "C.sdsl", DeclaredBaseNames: []string{"D"}},
		{Name: "A", FileIdentity: "A.sdsl", DeclaredBaseNames: []string{"B", "C"}},
		{Name: "Leaf", FileIdentity: "Leaf.sdsl", DeclaredBaseNames: []string{"A", "D"}},
	}
}

func TestExportUnknownRoot(t *testing.T) {
	s := NewSession(Options{})
	_, err := s.Export("Ghost")
	assert.Error(t, err)
}

func TestExportMatchesTreeChildren(t *testing.T) {
	s := NewSession(Options{DirectParentsOnly: true})
	s.Rebuild(baseMidLeaf())

	root, err := s.Export("Base")
	require.NoError(t, err)

	assert.Equal(t, "Base", root.Name)
	assert.Equal(t, "Base.sdsl", root.FileIdentity)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Mid", root.Children[0].Name)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "Leaf", root.Children[0].Children[0].Name)

	require.Len(t, root.Variables, 1)
	assert.Equal(t, "Color", root.Variables[0].Name)
	require.Len(t, root.Children[0].Methods, 1)
	assert.Equal(t, "Compute", root.Children[0].Methods[0].Name)
	assert.True(t, root.Children[0].Children[0].Methods[0].IsOverride)
}

func TestExportFirstParentWins(t *testing.T) {
	s := NewSession(Options{DirectParentsOnly: false})
	s.Rebuild(diamondUnits())

	root, err := s.Export("D")
	require.NoError(t, err)

	// D's children in discovery order are B then C; A hangs under B, the
	// first parent that reaches it. C keeps its edge but exports no copy.
	var b, c *ExportNode
	for _, child := range root.Children {
		switch child.Name {
		case "B":
			b = child
		case "C":
			c = child
		}
	}
	require.NotNil(t, b)
	require.NotNil(t, c)

	assert.NotEmpty(t, b.Children, "A appears under its first tree parent")
	assert.Empty(t, c.Children, "A is not duplicated under later parents")
}

func TestExportNodeCountTreePolicies(t *testing.T) {
	units := diamondUnits()

	direct := NewSession(Options{DirectParentsOnly: true})
	direct.Rebuild(units)
	all := NewSession(Options{DirectParentsOnly: false})
	all.Rebuild(units)

	countForest := func(forest []*ExportNode) int {
		total := 0
		for _, n := range forest {
			total += n.NodeCount()
		}
		return total
	}

	dc := countForest(direct.ExportRoots())
	ac := countForest(all.ExportRoots())
	assert.LessOrEqual(t, dc, ac,
		"hiding redundant declared bases can only shrink the tree")
}

func TestExportRootsSharedNodeOnce(t *testing.T) {
	s := NewSession(Options{DirectParentsOnly: true})
	s.Rebuild([]shader.ParsedUnit{
		{Name: "R1", FileIdentity: "R1.sdsl"},
		{Name: "R2", FileIdentity: "R2.sdsl"},
		{Name: "Both", FileIdentity: "Both.sdsl", DeclaredBaseNames: []string{"R1", "R2"}},
	})

	forest := s.ExportRoots()
	total := 0
	for _, n := range forest {
		total += n.NodeCount()
	}
	assert.Equal(t, 3, total, "a shader with two root parents exports once")
}
