package shader

import "strings"

// Bind group indices used by every generated variant.
const (
	GroupView     = 0
	GroupNode     = 1
	GroupMaterial = 2
)

// Bindings inside GroupMaterial.
const (
	BindingMaterialParams   = 0
	BindingBaseColorSampler = 1
	BindingBaseColorTexture = 2
)

// Entry point names shared by all variants.
const (
	VertexEntryPoint   = "vertex_main"
	FragmentEntryPoint = "fragment_main"
)

const wgslMaterialParams = `struct MaterialParams {
    base_color_factor: vec4<f32>,
    emissive_factor: vec4<f32>,
    metallic_factor: f32,
    roughness_factor: f32,
};
`

const wgslBindings = `
@group(0) @binding(0) var<uniform> view_proj: mat4x4<f32>;
@group(1) @binding(0) var<uniform> node_transform: mat4x4<f32>;
@group(2) @binding(0) var<uniform> material: MaterialParams;
`

const wgslTextureBindings = `@group(2) @binding(1) var base_color_sampler: sampler;
@group(2) @binding(2) var base_color_texture: texture_2d<f32>;
`

const wgslLinearToSRGB = `
fn linear_to_srgb(x: f32) -> f32 {
    if (x <= 0.0031308) {
        return 12.92 * x;
    }
    return 1.055 * pow(x, 1.0 / 2.4) - 0.055;
}
`

// generateSource writes the WGSL program for a feature set.
//
// Parameters:
//   - f: the variant's features
//
// Returns:
//   - string: the WGSL source
func generateSource(f Features) string {
	var sb strings.Builder

	sb.WriteString("struct VertexInput {\n    @location(0) position: vec3<f32>,\n")
	if f.Has(FeatureNormals) {
		sb.WriteString("    @location(1) normal: vec3<f32>,\n")
	}
	if f.Has(FeatureUVs) {
		sb.WriteString("    @location(2) texcoord0: vec2<f32>,\n")
	}
	sb.WriteString("};\n\n")

	sb.WriteString("struct VertexOutput {\n    @builtin(position) position: vec4<f32>,\n")
	if f.Has(FeatureNormals) {
		sb.WriteString("    @location(1) normal: vec3<f32>,\n")
	}
	if f.Has(FeatureUVs) {
		sb.WriteString("    @location(2) texcoord0: vec2<f32>,\n")
	}
	sb.WriteString("};\n\n")

	sb.WriteString(wgslMaterialParams)
	sb.WriteString(wgslBindings)
	if f.Has(FeatureColorTexture) {
		sb.WriteString(wgslTextureBindings)
	}
	sb.WriteString(wgslLinearToSRGB)

	sb.WriteString("\n@vertex\nfn " + VertexEntryPoint + "(vin: VertexInput) -> VertexOutput {\n")
	sb.WriteString("    var vout: VertexOutput;\n")
	sb.WriteString("    vout.position = view_proj * node_transform * vec4<f32>(vin.position, 1.0);\n")
	if f.Has(FeatureNormals) {
		sb.WriteString("    vout.normal = vin.normal;\n")
	}
	if f.Has(FeatureUVs) {
		sb.WriteString("    vout.texcoord0 = vin.texcoord0;\n")
	}
	sb.WriteString("    return vout;\n}\n")

	sb.WriteString("\n@fragment\nfn " + FragmentEntryPoint + "(fin: VertexOutput) -> @location(0) vec4<f32> {\n")
	sb.WriteString("    var color = vec4<f32>(material.base_color_factor.xyz, 1.0);\n")
	if f.Textured() {
		sb.WriteString("    let texture_color = textureSample(base_color_texture, base_color_sampler, fin.texcoord0);\n")
		sb.WriteString("    if (texture_color.a < 0.001) {\n        discard;\n    }\n")
		sb.WriteString("    color = vec4<f32>(material.base_color_factor.xyz * texture_color.xyz, 1.0);\n")
	}
	sb.WriteString("    color.x = linear_to_srgb(color.x);\n")
	sb.WriteString("    color.y = linear_to_srgb(color.y);\n")
	sb.WriteString("    color.z = linear_to_srgb(color.z);\n")
	sb.WriteString("    return color;\n}\n")

	return sb.String()
}
