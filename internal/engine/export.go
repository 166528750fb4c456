package engine

import (
	"fmt"

	"shaderscope/internal/logging"
	"shaderscope/internal/shader"
)

// ExportNode is one shader in the exported snapshot tree. Children match
// GetTreeChildren recursively; a shader reachable as a tree child of
// multiple parents appears under the first parent that added it.
type ExportNode struct {
	Name            string         `json:"name"`
	FileIdentity    string         `json:"fileIdentity"`
	DirectBaseNames []string       `json:"directBaseNames,omitempty"`
	Variables       []ExportMember `json:"variables,omitempty"`
	Methods         []ExportMember `json:"methods,omitempty"`
	Children        []*ExportNode  `json:"children,omitempty"`
}

// ExportMember is one declaration on an exported node.
type ExportMember struct {
	Name       string `json:"name"`
	TypeName   string `json:"typeName,omitempty"`
	IsStream   bool   `json:"isStream,omitempty"`
	IsOverride bool   `json:"isOverride,omitempty"`
	IsAbstract bool   `json:"isAbstract,omitempty"`
}

// Export renders the subtree under root from the current snapshot.
// Unknown roots are an error; the walk itself is total under any graph
// shape because visited nodes are never re-entered.
func (s *Session) Export(root string) (*ExportNode, error) {
	snap := s.current()
	d, ok := snap.reg.TryGet(root)
	if !ok {
		return nil, fmt.Errorf("export: unknown shader %q", root)
	}

	visited := make(map[string]bool)
	node := exportWalk(snap, d, visited)
	logging.Export("exported %q: %d nodes", root, len(visited))
	return node, nil
}

// ExportRoots renders the whole forest, one tree per root. The visited
// set spans trees, so a shader shared between roots appears once.
func (s *Session) ExportRoots() []*ExportNode {
	snap := s.current()
	visited := make(map[string]bool)

	var forest []*ExportNode
	for _, root := range snap.result.Roots {
		if n := exportWalk(snap, root, visited); n != nil {
			forest = append(forest, n)
		}
	}
	logging.Export("exported forest: %d roots, %d nodes", len(forest), len(visited))
	return forest
}

func exportWalk(snap *snapshot, d *shader.ShaderDescriptor, visited map[string]bool) *ExportNode {
	if visited[d.Name] {
		return nil
	}
	visited[d.Name] = true

	node := &ExportNode{
		Name:            d.Name,
		FileIdentity:    d.FileIdentity,
		DirectBaseNames: append([]string(nil), d.DeclaredBaseNames...),
	}
	for _, m := range d.Members {
		em := ExportMember{
			Name:       m.Name,
			TypeName:   m.TypeName,
			IsStream:   m.IsStream,
			IsOverride: m.IsOverride,
			IsAbstract: m.IsAbstract,
		}
		switch m.Kind {
		case shader.KindMethod:
			node.Methods = append(node.Methods, em)
		default:
			node.Variables = append(node.Variables, em)
		}
	}

	for _, child := range snap.reg.Resolve(d.TreeChildren) {
		if n := exportWalk(snap, child, visited); n != nil {
			node.Children = append(node.Children, n)
		}
	}
	return node
}

// NodeCount reports how many nodes Export(root) would emit.
func (n *ExportNode) NodeCount() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += c.NodeCount()
	}
	return count
}
