package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRenderer is an option builder that sets the Renderer loaded models are uploaded to.
//
// Parameters:
//   - r: the renderer instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithShaderCache is an option builder that shares an existing variant cache with the Loader.
// The Loader releases the cache on Release.
//
// Parameters:
//   - cache: the shader cache, created for the same Renderer
//
// Returns:
//   - LoaderBuilderOption: a function that applies the shader cache option to a loader
func WithShaderCache(cache shader.Cache) LoaderBuilderOption {
	return func(l *loader) {
		l.shaders = cache
	}
}

// WithLogger is an option builder that sets the structured logger of the Loader and its models.
//
// Parameters:
//   - logger: the logger, ignored when nil
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithProfiler is an option builder that enables per-stage import timing.
//
// Parameters:
//   - p: the profiler that receives the stage marks
//
// Returns:
//   - LoaderBuilderOption: a function that applies the profiler option to a loader
func WithProfiler(p *profiler.Profiler) LoaderBuilderOption {
	return func(l *loader) {
		l.profiler = p
	}
}

// WithDecodeWorkers is an option builder that sets the number of image decode workers.
// Zero or less decodes images on the importing goroutine.
//
// Parameters:
//   - n: the maximum number of decode workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decode workers option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.decodeWorkers = n
	}
}

// WithColorFormat is an option builder that sets the color attachment format of recorded bundles.
//
// Parameters:
//   - format: the color format
//
// Returns:
//   - LoaderBuilderOption: a function that applies the color format option to a loader
func WithColorFormat(format wgpu.TextureFormat) LoaderBuilderOption {
	return func(l *loader) {
		l.colorFormat = format
	}
}

// WithSampleCount is an option builder that sets the multisample count of recorded bundles.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the sample count option to a loader
func WithSampleCount(count renderer.MSAASampleCount) LoaderBuilderOption {
	return func(l *loader) {
		l.sampleCount = count
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = m
	}
}
