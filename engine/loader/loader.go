package loader

import (
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLB selects the binary glTF loader backend.
	BackendTypeGLB LoaderBackendType = iota
)

// decodeQueueSize bounds the image decode tasks waiting for a worker.
const decodeQueueSize = 256

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer renderer.Renderer
	logger   *slog.Logger
	profiler *profiler.Profiler

	decodeWorkers int
	pool          worker.DynamicWorkerPool

	colorFormat wgpu.TextureFormat
	sampleCount renderer.MSAASampleCount
	shaders     shader.Cache
	pipelines   pipeline.Cache

	modelCache map[string]model.Model

	backend loaderBackend
}

// Loader defines the public-facing interface for importing and caching GLB models.
// With a Renderer configured, every loaded model is uploaded and shares one shader variant cache
// and one pipeline cache with the other models of the Loader.
type Loader interface {
	// Load imports a model file and caches the result under its path.
	// If the model is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if the format is unsupported or the import or upload fails
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key and fallback model name
	//   - r: the reader providing the GLB blob
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if the import or upload fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model

	// ShaderCache returns the variant cache shared by loaded models, or nil without a Renderer.
	//
	// Returns:
	//   - shader.Cache: the shared cache
	ShaderCache() shader.Cache

	// Release releases every cached model, the shared caches and the decode workers.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLB)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		logger:        slog.Default(),
		decodeWorkers: runtime.NumCPU(),
		colorFormat:   wgpu.TextureFormatBGRA8Unorm,
		sampleCount:   renderer.MSAAOff,
		modelCache:    make(map[string]model.Model),
	}

	for _, option := range options {
		option(l)
	}

	if l.decodeWorkers > 0 {
		l.pool = worker.NewDynamicWorkerPool(l.decodeWorkers, decodeQueueSize, time.Second)
	}

	var modelOptions []model.ModelBuilderOption
	if l.renderer != nil {
		if l.shaders == nil {
			l.shaders = shader.NewCache(l.renderer, shader.WithLogger(l.logger))
		}
		l.pipelines = pipeline.NewCache(l.renderer, l.shaders, l.logger,
			pipeline.WithColorFormat(l.colorFormat),
			pipeline.WithDepthStencilFormat(model.DepthStencilFormat),
			pipeline.WithSampleCount(l.sampleCount),
		)
		modelOptions = append(modelOptions,
			model.WithShaderCache(l.shaders),
			model.WithPipelineCache(l.pipelines),
			model.WithColorFormat(l.colorFormat),
			model.WithSampleCount(l.sampleCount),
		)
	}

	switch backendType {
	case BackendTypeGLB:
		l.backend = newGLTFLoaderBackend(newGLTFImporter(l.logger, l.pool, l.profiler, modelOptions))
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	m, err := backend.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return l.finish(path, m)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, errors.New("loader has no backend")
	}

	m, err := l.backend.LoadReader(name, r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load from reader %q", name)
	}
	return l.finish(name, m)
}

// finish uploads a freshly imported model when a Renderer is configured, reports the profile and
// stores the model. A concurrent load of the same key that finished first wins.
func (l *loader) finish(key string, m model.Model) (model.Model, error) {
	if l.renderer != nil {
		stats, err := m.Upload(l.renderer)
		if err != nil {
			m.Release()
			return nil, errors.Wrapf(err, "failed to upload %q", key)
		}
		l.logger.Debug("uploaded model", "model", m.Name(), "buffers", stats.Buffers, "buffer_bytes", stats.BufferBytes,
			"textures", stats.Textures, "materials", stats.Materials)
	}
	if l.profiler != nil {
		l.profiler.Mark("upload")
		l.profiler.Report(m.Name())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		m.Release()
		return cached, nil
	}
	l.modelCache[key] = m
	return m, nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) ShaderCache() shader.Cache {
	return l.shaders
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, m := range l.modelCache {
		m.Release()
		delete(l.modelCache, key)
	}
	if l.pipelines != nil {
		l.pipelines.Release()
		l.pipelines = nil
	}
	if l.shaders != nil {
		l.shaders.Release()
		l.shaders = nil
	}
	if l.pool != nil {
		l.pool.Stop()
		l.pool = nil
	}
}

// resolveBackend checks the file extension against the backend's supported formats.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	if l.backend == nil {
		return nil, errors.New("loader has no backend")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(l.backend.Extensions(), ext) {
		return nil, errors.Errorf("unsupported model format: %q", ext)
	}
	return l.backend, nil
}
