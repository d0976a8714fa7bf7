package loader

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/pkg/errors"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	logger       *slog.Logger
	pool         worker.DynamicWorkerPool
	profiler     *profiler.Profiler
	modelOptions []model.ModelBuilderOption
}

// gltfImporter orchestrates a full GLB import: it parses the container and combines the extractors
// into a Model whose resources are not uploaded yet.
type gltfImporter interface {
	// Import reads and imports the GLB file at path. The model is named after the default scene,
	// or the file name when the scene has none.
	//
	// Parameters:
	//   - path: the file path to the .glb file
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if parsing or extraction fails
	Import(path string) (model.Model, error)

	// ImportReader imports a GLB blob read from r.
	//
	// Parameters:
	//   - name: the fallback model name
	//   - r: the reader providing the blob
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if reading, parsing or extraction fails
	ImportReader(name string, r io.Reader) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new importer.
//
// Parameters:
//   - logger: the logger handed to the extractors and the model
//   - pool: the worker pool images are decoded on, or nil to decode inline
//   - prof: the stage profiler, or nil
//   - modelOptions: options applied to every imported model
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(logger *slog.Logger, pool worker.DynamicWorkerPool, prof *profiler.Profiler, modelOptions []model.ModelBuilderOption) gltfImporter {
	return &gltfImporterImpl{
		logger:       logger,
		pool:         pool,
		profiler:     prof,
		modelOptions: modelOptions,
	}
}

func (imp *gltfImporterImpl) Import(path string) (model.Model, error) {
	imp.begin()
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return imp.importFromParser(parser, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader) (model.Model, error) {
	imp.begin()
	parser := newGLTFParser()
	if err := parser.ParseReader(r); err != nil {
		return nil, errors.Wrap(err, "failed to parse from reader")
	}
	return imp.importFromParser(parser, name)
}

// importFromParser runs the extractors in dependency order: views, images and samplers, textures,
// materials, meshes, then the scene flattener.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (model.Model, error) {
	imp.mark("container")
	doc := parser.Document()

	buffers := newGLTFBufferExtractor(parser)
	textureExtractor := newGLTFTextureExtractor(parser, buffers)
	materialExtractor := newGLTFMaterialExtractor(parser, imp.logger)
	meshExtractor := newGLTFMeshExtractor(parser, buffers, materialExtractor, imp.logger)

	views, err := buffers.ExtractBufferViews()
	if err != nil {
		return nil, errors.Wrap(err, "buffer view extraction failed")
	}
	imp.mark("views")

	images, err := textureExtractor.ExtractImages(imp.pool)
	if err != nil {
		return nil, errors.Wrap(err, "image extraction failed")
	}
	imp.mark("images")

	samplers := textureExtractor.ExtractSamplers()
	textures, defaultSampler, err := textureExtractor.ExtractTextures(images, samplers)
	if err != nil {
		return nil, errors.Wrap(err, "texture extraction failed")
	}
	if defaultSampler != nil {
		samplers = append(samplers, defaultSampler)
	}

	materials, err := materialExtractor.ExtractMaterials(textures)
	if err != nil {
		return nil, errors.Wrap(err, "material extraction failed")
	}
	imp.mark("materials")

	meshes, err := meshExtractor.ExtractMeshes(materials)
	if err != nil {
		return nil, errors.Wrap(err, "mesh extraction failed")
	}
	if materialExtractor.HasDefaultMaterial() {
		materials = append(materials, materialExtractor.DefaultMaterial())
	}
	imp.mark("meshes")

	nodes, err := flattenScene(doc.Nodes, meshes)
	if err != nil {
		return nil, errors.Wrap(err, "scene flattening failed")
	}
	imp.mark("flatten")

	name := gltfExtractModelName(doc, fallbackName)
	imp.logger.Debug("imported model",
		"model", name, "views", len(views), "images", len(images), "textures", len(textures),
		"materials", len(materials), "meshes", len(meshes), "nodes", len(nodes))

	opts := append([]model.ModelBuilderOption{model.WithLogger(imp.logger)}, imp.modelOptions...)
	opts = append(opts,
		model.WithName(name),
		model.WithBufferViews(views),
		model.WithImages(images),
		model.WithSamplers(samplers),
		model.WithTextures(textures),
		model.WithMaterials(materials),
		model.WithMeshes(meshes),
		model.WithNodes(nodes),
	)
	return model.NewModel(opts...), nil
}

func (imp *gltfImporterImpl) begin() {
	if imp.profiler != nil {
		imp.profiler.Begin()
	}
}

func (imp *gltfImporterImpl) mark(stage string) {
	if imp.profiler != nil {
		imp.profiler.Mark(stage)
	}
}

// --- Helper Functions ---

// gltfExtractModelName derives a model name from the default scene or a fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return "unnamed_model"
}
