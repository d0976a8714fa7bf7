package shader

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage of an entry point.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

// bindingVisibility is applied to every reflected layout entry. Groups are shared between both
// stages of a variant, so the layouts of all variants stay interchangeable.
const bindingVisibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

// shader is the implementation of the Shader interface.
type shader struct {
	features   Features
	source     string
	reflection reflection

	module           *renderer.ShaderModule
	bindGroupLayouts []*renderer.BindGroupLayout
	pipelineLayout   *renderer.PipelineLayout
}

// Shader is one compiled program variant together with the layouts a pipeline needs to use it.
type Shader interface {
	// Features returns the feature set this variant was generated for.
	//
	// Returns:
	//   - Features: the variant's features
	Features() Features

	// Key retrieves the unique identifier for this variant.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the generated WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// Module returns the compiled shader module.
	//
	// Returns:
	//   - *renderer.ShaderModule: the device module
	Module() *renderer.ShaderModule

	// EntryPoint returns the entry point name for a stage, or an empty string.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint(shaderType ShaderType) string

	// BindGroupLayoutEntries returns the reflected layout entries of a group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutEntry: the entries sorted by binding, nil if the group is not declared
	BindGroupLayoutEntries(group int) []wgpu.BindGroupLayoutEntry

	// BindGroupLayout returns the device layout for a group. Layouts are owned by the Cache and shared
	// between variants with identical entries.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *renderer.BindGroupLayout: the layout, or nil if the group is out of range
	BindGroupLayout(group int) *renderer.BindGroupLayout

	// BindGroupVarName retrieves the declared variable name for a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// PipelineLayout returns the pipeline layout holding the view, node and material groups.
	//
	// Returns:
	//   - *renderer.PipelineLayout: the pipeline layout
	PipelineLayout() *renderer.PipelineLayout

	// VertexLayouts returns one buffer layout per vertex attribute. The index of a layout is the vertex
	// buffer slot the attribute must be bound to.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, position first
	VertexLayouts() []wgpu.VertexBufferLayout

	// Release releases the module and pipeline layout. Group layouts belong to the Cache.
	Release()
}

var _ Shader = &shader{}

func (s *shader) Features() Features {
	return s.features
}

func (s *shader) Key() string {
	return s.features.Key()
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *renderer.ShaderModule {
	return s.module
}

func (s *shader) EntryPoint(shaderType ShaderType) string {
	return s.reflection.entryPoints[shaderType]
}

func (s *shader) BindGroupLayoutEntries(group int) []wgpu.BindGroupLayoutEntry {
	return s.reflection.bindGroups[group]
}

func (s *shader) BindGroupLayout(group int) *renderer.BindGroupLayout {
	if group < 0 || group >= len(s.bindGroupLayouts) {
		return nil
	}
	return s.bindGroupLayouts[group]
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.reflection.varNames[group] == nil {
		return ""
	}
	return s.reflection.varNames[group][binding]
}

func (s *shader) PipelineLayout() *renderer.PipelineLayout {
	return s.pipelineLayout
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.reflection.vertexLayouts
}

func (s *shader) Release() {
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
		s.pipelineLayout = nil
	}
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}
