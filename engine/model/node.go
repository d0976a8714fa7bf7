package model

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FlattenNodes walks the hierarchy and returns every mesh-bearing node with its world transform.
// Roots are nodes no other node lists as a child, visited in index order; children are visited
// depth first in the order they are listed. Nodes without a mesh pass their transform on but are
// not returned. The input is not modified.
//
// Parameters:
//   - nodes: the hierarchy, indexed by position
//
// Returns:
//   - []FlatNode: mesh-bearing nodes in pre-order
//   - error: a ReferenceError for a child index out of range, a FormatError for a cycle
func FlattenNodes(nodes []Node) ([]FlatNode, error) {
	isChild := make([]bool, len(nodes))
	for i, n := range nodes {
		for _, c := range n.Children {
			if err := common.CheckIndex("node.child", i, c, len(nodes)); err != nil {
				return nil, err
			}
			isChild[c] = true
		}
	}

	w := flattenWalk{
		nodes:   nodes,
		onStack: make([]bool, len(nodes)),
		visited: make([]bool, len(nodes)),
	}
	for i := range nodes {
		if isChild[i] {
			continue
		}
		if err := w.visit(i, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}

	// A node still unvisited hangs below a cycle that no root leads into.
	for i, seen := range w.visited {
		if !seen {
			return nil, common.NewFormatError("node.cycle", i, "node is part of a cycle unreachable from any root")
		}
	}
	return w.out, nil
}

// flattenWalk carries the traversal state of FlattenNodes.
type flattenWalk struct {
	nodes   []Node
	onStack []bool
	visited []bool
	out     []FlatNode
}

func (w *flattenWalk) visit(i int, parent mgl32.Mat4) error {
	if w.onStack[i] {
		return common.NewFormatError("node.cycle", i, "node is its own ancestor")
	}
	w.onStack[i] = true
	w.visited[i] = true
	defer func() { w.onStack[i] = false }()

	n := w.nodes[i]
	world := parent.Mul4(n.Local)
	if n.Mesh != nil {
		w.out = append(w.out, FlatNode{Index: n.Index, Name: n.Name, Mesh: n.Mesh, World: world})
	}
	for _, c := range n.Children {
		if err := w.visit(c, world); err != nil {
			return err
		}
	}
	return nil
}

// nodesFromFlat turns a flat list back into a childless hierarchy whose local transforms are the
// world transforms, so that flattening it again is the identity.
func nodesFromFlat(flat []FlatNode) []Node {
	nodes := make([]Node, len(flat))
	for i, f := range flat {
		nodes[i] = Node{Index: f.Index, Name: f.Name, Mesh: f.Mesh, Local: f.World}
	}
	return nodes
}
