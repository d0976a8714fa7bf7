package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for binary glTF (GLB) files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new GLB loader backend.
//
// Parameters:
//   - importer: the importer that performs the extraction
//
// Returns:
//   - gltfLoaderBackend: the loader backend for GLB files
func newGLTFLoaderBackend(importer gltfImporter) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{importer: importer}
}

func (b *gltfLoaderBackendImpl) Load(path string) (model.Model, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader) (model.Model, error) {
	return b.importer.ImportReader(name, r)
}

func (b *gltfLoaderBackendImpl) Extensions() []string {
	return []string{".glb"}
}
