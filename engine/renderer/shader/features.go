package shader

import "strings"

// Features is the set of optional vertex attributes and material inputs a shader variant is generated for.
// Each distinct value maps to exactly one generated program.
type Features uint8

const (
	// FeatureNormals adds the normal attribute at location 1.
	FeatureNormals Features = 1 << iota

	// FeatureUVs adds the first texture coordinate set at location 2.
	FeatureUVs

	// FeatureColorTexture declares the base color sampler and texture in group 2.
	FeatureColorTexture
)

// featureCount is the number of distinct feature bits, so 1<<featureCount variants exist.
const featureCount = 3

// NewFeatures builds a Features value from the three boolean inputs of a primitive.
//
// Parameters:
//   - hasNormals: whether the primitive has a NORMAL attribute
//   - hasUVs: whether the primitive has a TEXCOORD_0 attribute
//   - hasColorTexture: whether the primitive's material has a base color texture
//
// Returns:
//   - Features: the combined bitset
func NewFeatures(hasNormals, hasUVs, hasColorTexture bool) Features {
	var f Features
	if hasNormals {
		f |= FeatureNormals
	}
	if hasUVs {
		f |= FeatureUVs
	}
	if hasColorTexture {
		f |= FeatureColorTexture
	}
	return f
}

// Has reports whether every bit of flag is set.
func (f Features) Has(flag Features) bool {
	return f&flag == flag
}

// Textured reports whether the variant samples the base color texture. Sampling needs both the
// texture and texture coordinates.
func (f Features) Textured() bool {
	return f.Has(FeatureUVs | FeatureColorTexture)
}

// Key returns the stable identifier of the variant, e.g. "glb_n_uv_colortex".
func (f Features) Key() string {
	parts := []string{"glb"}
	if f.Has(FeatureNormals) {
		parts = append(parts, "n")
	}
	if f.Has(FeatureUVs) {
		parts = append(parts, "uv")
	}
	if f.Has(FeatureColorTexture) {
		parts = append(parts, "colortex")
	}
	return strings.Join(parts, "_")
}

func (f Features) String() string {
	return f.Key()
}
