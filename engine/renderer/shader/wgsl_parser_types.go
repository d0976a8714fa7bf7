package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment of a WGSL type, used for MinBindingSize.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// reflection is everything the pipeline and bind group setup needs to know about a generated program.
type reflection struct {
	// bindGroups holds layout entries keyed by group index, sorted by binding.
	bindGroups map[int][]wgpu.BindGroupLayoutEntry
	// varNames holds the declared variable name per group and binding.
	varNames map[int]map[int]string
	// vertexLayouts has one single-attribute layout per VertexInput field, in location order.
	vertexLayouts []wgpu.VertexBufferLayout
	// entryPoints holds the entry function name per stage.
	entryPoints map[ShaderType]string
}
