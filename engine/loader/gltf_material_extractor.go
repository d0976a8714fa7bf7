package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/pkg/errors"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser          gltfParser
	logger          *slog.Logger
	defaultMaterial material.Material
}

// gltfMaterialExtractor resolves materials[] entries into render materials and owns the single
// default material of an import.
type gltfMaterialExtractor interface {
	// ExtractMaterials resolves every material of the document.
	//
	// Parameters:
	//   - textures: the extracted textures, referenced by baseColorTexture.index
	//
	// Returns:
	//   - []material.Material: the materials, indexed as in the document
	//   - error: error if no document is loaded
	ExtractMaterials(textures []*material.Texture) ([]material.Material, error)

	// DefaultMaterial returns the material used by primitives without a material index. It is
	// created on the first call and the same instance is returned afterwards.
	//
	// Returns:
	//   - material.Material: the default material
	DefaultMaterial() material.Material

	// HasDefaultMaterial reports whether DefaultMaterial has been called.
	//
	// Returns:
	//   - bool: true once the default material exists
	HasDefaultMaterial() bool
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - logger: the logger for ignored texture references
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser, logger *slog.Logger) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser, logger: logger}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterials(textures []*material.Texture) ([]material.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	materials := make([]material.Material, len(doc.Materials))
	for i := range doc.Materials {
		materials[i] = resolveMaterial(i, &doc.Materials[i], textures, e.logger)
	}
	return materials, nil
}

func (e *gltfMaterialExtractorImpl) DefaultMaterial() material.Material {
	if e.defaultMaterial == nil {
		e.defaultMaterial = material.NewMaterial(material.WithName("default"))
	}
	return e.defaultMaterial
}

func (e *gltfMaterialExtractorImpl) HasDefaultMaterial() bool {
	return e.defaultMaterial != nil
}

// resolveMaterial starts from the material defaults and overrides each factor the entry sets.
// A missing or out of range base color texture leaves the material untextured.
func resolveMaterial(index int, m *gltfMaterial, textures []*material.Texture, logger *slog.Logger) material.Material {
	opts := []material.MaterialBuilderOption{
		material.WithIndex(index),
		material.WithName(m.Name),
		material.WithDoubleSided(m.DoubleSided),
	}
	if m.EmissiveFactor != nil {
		opts = append(opts, material.WithEmissiveFactor(*m.EmissiveFactor))
	}

	if pbr := m.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			opts = append(opts, material.WithBaseColorFactor(*pbr.BaseColorFactor))
		}
		if pbr.MetallicFactor != nil {
			opts = append(opts, material.WithMetallicFactor(*pbr.MetallicFactor))
		}
		if pbr.RoughnessFactor != nil {
			opts = append(opts, material.WithRoughnessFactor(*pbr.RoughnessFactor))
		}
		if info := pbr.BaseColorTexture; info != nil {
			if info.Index >= 0 && info.Index < len(textures) {
				opts = append(opts, material.WithBaseColorTexture(textures[info.Index]))
			} else {
				logger.Debug("ignoring base color texture out of range", "material", index, "texture", info.Index, "textures", len(textures))
			}
		}
	}

	return material.NewMaterial(opts...)
}
