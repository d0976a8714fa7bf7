package loader

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Attribute semantics read from primitive attribute maps.
const (
	attributePosition = "POSITION"
	attributeNormal   = "NORMAL"
	attributeTexCoord = "TEXCOORD_%d"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser    gltfParser
	buffers   gltfBufferExtractor
	materials gltfMaterialExtractor
	logger    *slog.Logger
}

// gltfMeshExtractor builds meshes and primitives from a parsed document and declares the GPU usage
// of every buffer view a primitive reads.
type gltfMeshExtractor interface {
	// ExtractMeshes builds every mesh. Primitives with an unsupported topology or vertex format are
	// skipped with a warning; their siblings are still imported.
	//
	// Parameters:
	//   - materials: the resolved materials, referenced by primitive material indices
	//
	// Returns:
	//   - []*model.Mesh: the meshes, indexed as in the document
	//   - error: a ReferenceError or FormatError for an invalid primitive
	ExtractMeshes(materials []material.Material) ([]*model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - buffers: the buffer extractor providing accessors
//   - materials: the material extractor providing the default material
//   - logger: the logger for skipped primitives
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, buffers gltfBufferExtractor, materials gltfMaterialExtractor, logger *slog.Logger) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, buffers: buffers, materials: materials, logger: logger}
}

func (e *gltfMeshExtractorImpl) ExtractMeshes(materials []material.Material) ([]*model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	meshes := make([]*model.Mesh, len(doc.Meshes))
	for i := range doc.Meshes {
		src := &doc.Meshes[i]
		mesh := &model.Mesh{Index: i, Name: src.Name}

		for j := range src.Primitives {
			prim, err := e.extractPrimitive(i, j, &src.Primitives[j], materials)
			var unsupported *common.UnsupportedFeatureError
			if errors.As(err, &unsupported) {
				e.logger.Warn("skipping primitive", "mesh", i, "primitive", j, "mode", src.Primitives[j].mode(),
					"check", unsupported.Check, "detail", unsupported.Detail)
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", i, j)
			}
			mesh.Primitives = append(mesh.Primitives, prim)
		}
		meshes[i] = mesh
	}
	return meshes, nil
}

// extractPrimitive resolves one primitive. Usage flags are added only after every check has passed,
// so a skipped primitive leaves its views untouched.
func (e *gltfMeshExtractorImpl) extractPrimitive(meshIndex, index int, src *gltfPrimitive, materials []material.Material) (*model.Primitive, error) {
	mode := src.mode()
	if !model.PrimitiveMode(mode).Supported() {
		return nil, common.NewUnsupportedFeatureError("primitive.mode", index, "topology mode %d", mode)
	}

	prim := &model.Primitive{Index: index, Mode: model.PrimitiveMode(mode)}

	posIndex, ok := src.Attributes[attributePosition]
	if !ok {
		return nil, common.NewFormatError("primitive.position", meshIndex, "primitive %d has no POSITION attribute", index)
	}
	var err error
	if prim.Positions, err = e.attribute(meshIndex, posIndex, model.AccessorVec3); err != nil {
		return nil, err
	}
	if normIndex, ok := src.Attributes[attributeNormal]; ok {
		if prim.Normals, err = e.attribute(meshIndex, normIndex, model.AccessorVec3); err != nil {
			return nil, err
		}
	}
	for set := 0; ; set++ {
		uvIndex, ok := src.Attributes[fmt.Sprintf(attributeTexCoord, set)]
		if !ok {
			break
		}
		// only set 0 is bound to the vertex stage
		var uv *model.Accessor
		if set == 0 {
			uv, err = e.attribute(meshIndex, uvIndex, model.AccessorVec2)
		} else {
			uv, err = e.accessor("primitive.attribute", meshIndex, uvIndex)
		}
		if err != nil {
			return nil, err
		}
		prim.TexCoords = append(prim.TexCoords, uv)
	}

	if src.Indices != nil {
		if prim.Indices, err = e.accessor("primitive.indices", meshIndex, *src.Indices); err != nil {
			return nil, err
		}
		if prim.Indices.Type() != model.AccessorScalar {
			return nil, common.NewFormatError("primitive.indices", meshIndex, "index accessor %d has type %s", *src.Indices, prim.Indices.Type())
		}
		if _, err := prim.Indices.IndexFormat(); err != nil {
			return nil, err
		}
	}

	if src.Material != nil {
		if err := common.CheckIndex("primitive.material", meshIndex, *src.Material, len(materials)); err != nil {
			return nil, err
		}
		prim.Material = materials[*src.Material]
	} else {
		prim.Material = e.materials.DefaultMaterial()
	}

	for _, a := range prim.VertexAccessors() {
		if err := a.View().AddUsage(wgpu.BufferUsageVertex); err != nil {
			return nil, err
		}
	}
	if prim.Indices != nil {
		if err := prim.Indices.View().AddUsage(wgpu.BufferUsageIndex); err != nil {
			return nil, err
		}
	}
	return prim, nil
}

// attribute resolves a vertex attribute accessor. The shader reads 32-bit floats of the given shape.
func (e *gltfMeshExtractorImpl) attribute(meshIndex, accessorIndex int, shape model.AccessorType) (*model.Accessor, error) {
	a, err := e.accessor("primitive.attribute", meshIndex, accessorIndex)
	if err != nil {
		return nil, err
	}
	if a.ComponentType() != model.ComponentFloat || a.Type() != shape {
		return nil, common.NewUnsupportedFeatureError("primitive.attribute_format", accessorIndex,
			"attribute is %s of component type %d, want float %s", a.Type(), a.ComponentType(), shape)
	}
	return a, nil
}

func (e *gltfMeshExtractorImpl) accessor(check string, meshIndex, accessorIndex int) (*model.Accessor, error) {
	if err := common.CheckIndex(check, meshIndex, accessorIndex, len(e.parser.Document().Accessors)); err != nil {
		return nil, err
	}
	return e.buffers.Accessor(accessorIndex)
}
