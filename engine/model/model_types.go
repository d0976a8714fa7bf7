package model

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// --- Mesh Types ---

// PrimitiveMode is the primitive topology code of the scene description.
type PrimitiveMode int

const (
	ModePoints        PrimitiveMode = 0
	ModeLines         PrimitiveMode = 1
	ModeLineLoop      PrimitiveMode = 2
	ModeLineStrip     PrimitiveMode = 3
	ModeTriangles     PrimitiveMode = 4
	ModeTriangleStrip PrimitiveMode = 5
	ModeTriangleFan   PrimitiveMode = 6
)

// Supported reports whether the mode can be drawn. Only triangle lists and strips are.
func (m PrimitiveMode) Supported() bool {
	return m == ModeTriangles || m == ModeTriangleStrip
}

// Topology returns the GPU topology of a supported mode.
func (m PrimitiveMode) Topology() wgpu.PrimitiveTopology {
	if m == ModeTriangleStrip {
		return wgpu.PrimitiveTopologyTriangleStrip
	}
	return wgpu.PrimitiveTopologyTriangleList
}

// Primitive is one draw: its geometry accessors, material and topology.
type Primitive struct {
	// Index is the primitive's position inside its mesh.
	Index int

	// Mode is the topology, ModeTriangles or ModeTriangleStrip.
	Mode PrimitiveMode

	// Positions is the POSITION accessor. Always set.
	Positions *Accessor

	// Normals is the NORMAL accessor, or nil.
	Normals *Accessor

	// TexCoords holds TEXCOORD_0, TEXCOORD_1, ... in set order. Only the first set is drawn.
	TexCoords []*Accessor

	// Indices is the index accessor, or nil for non-indexed draws.
	Indices *Accessor

	// Material is the primitive's material, the shared default material when none is referenced.
	Material material.Material
}

// Features returns the shader variant the primitive is drawn with.
func (p *Primitive) Features() shader.Features {
	return shader.NewFeatures(p.Normals != nil, len(p.TexCoords) > 0, p.Material != nil && p.Material.BaseColorTexture() != nil)
}

// VertexAccessors returns the accessors bound to vertex buffer slots 0, 1, ... in slot order:
// positions, then normals and the first texture coordinate set when present.
func (p *Primitive) VertexAccessors() []*Accessor {
	accessors := []*Accessor{p.Positions}
	if p.Normals != nil {
		accessors = append(accessors, p.Normals)
	}
	if len(p.TexCoords) > 0 {
		accessors = append(accessors, p.TexCoords[0])
	}
	return accessors
}

// PipelineKey returns the pipeline state the primitive needs.
//
// Returns:
//   - pipeline.Key: the key
//   - error: a FormatError if an indexed strip has an unusable index type
func (p *Primitive) PipelineKey() (pipeline.Key, error) {
	key := pipeline.Key{
		Features: p.Features(),
		Topology: p.Mode.Topology(),
		CullMode: wgpu.CullModeBack,
	}
	if p.Material != nil && p.Material.DoubleSided() {
		key.CullMode = wgpu.CullModeNone
	}
	if p.Mode == ModeTriangleStrip && p.Indices != nil {
		format, err := p.Indices.IndexFormat()
		if err != nil {
			return pipeline.Key{}, err
		}
		key.StripIndexFormat = format
	}
	for slot, a := range p.VertexAccessors() {
		key.Strides[slot] = uint64(a.ByteStride())
	}
	return key, nil
}

// Mesh is a named list of primitives. Several nodes may draw the same mesh.
type Mesh struct {
	Index      int
	Name       string
	Primitives []*Primitive
}

// --- Node Types ---

// Node is one entry of the node hierarchy with its local transform already composed.
type Node struct {
	// Index is the node's index in the description.
	Index int

	// Name is the optional node name.
	Name string

	// Mesh is the mesh drawn at this node, or nil.
	Mesh *Mesh

	// Local is the transform relative to the parent.
	Local mgl32.Mat4

	// Children holds the indices of child nodes.
	Children []int
}

// FlatNode is a mesh-bearing node with its world transform baked in.
type FlatNode struct {
	Index int
	Name  string
	Mesh  *Mesh
	World mgl32.Mat4
}
