package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithIndex is an option builder that sets the material's index in the source file.
//
// Parameters:
//   - index: the material index
//
// Returns:
//   - MaterialBuilderOption: a function that applies the index option to a material
func WithIndex(index int) MaterialBuilderOption {
	return func(m *material) {
		m.index = index
	}
}

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColorFactor is an option builder that sets the linear RGBA base color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColorFactor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColorFactor = color
	}
}

// WithEmissiveFactor is an option builder that sets the RGB emissive color. The reserved w component stays 1.
//
// Parameters:
//   - color: the emissive color as RGB float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emissive option to a material
func WithEmissiveFactor(color [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissiveFactor = [4]float32{color[0], color[1], color[2], 1}
	}
}

// WithMetallicFactor is an option builder that sets the metallic factor of the material.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallicFactor(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallicFactor = metallic
	}
}

// WithRoughnessFactor is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughnessFactor(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughnessFactor = roughness
	}
}

// WithDoubleSided is an option builder that marks the material as double sided.
//
// Parameters:
//   - doubleSided: whether back faces are rendered
//
// Returns:
//   - MaterialBuilderOption: a function that applies the flag to a material
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}

// WithBaseColorTexture is an option builder that sets the base color texture.
//
// Parameters:
//   - tex: the texture, or nil for an untextured material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithBaseColorTexture(tex *Texture) MaterialBuilderOption {
	return func(m *material) {
		m.baseColorTexture = tex
	}
}
