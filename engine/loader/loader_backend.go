package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// loaderBackend defines the generic interface for importing models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.Model: the imported model, not yet uploaded
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the fallback model name
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the imported model, not yet uploaded
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Extensions lists the file extensions the backend reads, lower case with the leading dot.
	//
	// Returns:
	//   - []string: the supported extensions
	Extensions() []string
}
