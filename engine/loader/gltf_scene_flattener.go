package loader

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// flattenScene resolves node transforms and mesh references and flattens the hierarchy into the
// mesh-bearing nodes with their world transforms. The document nodes are not modified.
//
// Parameters:
//   - src: the document nodes
//   - meshes: the extracted meshes, referenced by node mesh indices
//
// Returns:
//   - []model.FlatNode: mesh-bearing nodes in depth-first pre-order
//   - error: a FormatError for a node with both matrix and TRS or for a cycle, a ReferenceError for
//     an invalid mesh or child index
func flattenScene(src []gltfNode, meshes []*model.Mesh) ([]model.FlatNode, error) {
	nodes := make([]model.Node, len(src))
	for i := range src {
		n := &src[i]
		if n.Matrix != nil && n.hasTRS() {
			return nil, common.NewFormatError("node.matrix_and_trs", i, "node has both a matrix and TRS properties")
		}

		var mesh *model.Mesh
		if n.Mesh != nil {
			if err := common.CheckIndex("node.mesh", i, *n.Mesh, len(meshes)); err != nil {
				return nil, err
			}
			mesh = meshes[*n.Mesh]
		}

		nodes[i] = model.Node{
			Index:    i,
			Name:     n.Name,
			Mesh:     mesh,
			Local:    localTransform(n),
			Children: n.Children,
		}
	}
	return model.FlattenNodes(nodes)
}

// localTransform composes rotation, translation and scale when any of them is present, with
// identity values for the missing ones. Otherwise it is the explicit matrix, or identity.
func localTransform(n *gltfNode) mgl32.Mat4 {
	if n.hasTRS() {
		rotation := common.IdentityRotation
		var translation [3]float32
		scale := common.IdentityScale
		if n.Rotation != nil {
			rotation = *n.Rotation
		}
		if n.Translation != nil {
			translation = *n.Translation
		}
		if n.Scale != nil {
			scale = *n.Scale
		}
		return common.ComposeTRS(rotation, translation, scale)
	}
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}
	return mgl32.Ident4()
}
