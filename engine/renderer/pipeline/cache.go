package pipeline

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
)

// pipelineCache is the implementation of the Cache interface.
type pipelineCache struct {
	device  renderer.Renderer
	shaders shader.Cache
	opts    []PipelineBuilderOption
	logger  *slog.Logger

	mu        sync.Mutex
	pipelines map[Key]Pipeline
}

// Cache memoizes render pipelines by Key. A Cache is safe for concurrent use.
type Cache interface {
	// Get returns the pipeline for key, creating the shader variant and the device pipeline on first use.
	//
	// Parameters:
	//   - key: the pipeline state key
	//
	// Returns:
	//   - Pipeline: the cached pipeline
	//   - error: a ResourceCreationError if the variant or the pipeline cannot be created
	Get(key Key) (Pipeline, error)

	// Len reports the number of distinct pipelines.
	//
	// Returns:
	//   - int: the number of pipelines
	Len() int

	// Release releases every pipeline. Shader variants stay in the shader cache.
	Release()
}

var _ Cache = &pipelineCache{}

// NewCache creates an empty pipeline cache. The options are applied to every pipeline it creates.
//
// Parameters:
//   - device: the renderer used to create pipelines
//   - shaders: the shader variant cache
//   - logger: the logger reporting created pipelines, or nil for slog.Default()
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Cache: the new cache
func NewCache(device renderer.Renderer, shaders shader.Cache, logger *slog.Logger, opts ...PipelineBuilderOption) Cache {
	return &pipelineCache{
		device:    device,
		shaders:   shaders,
		opts:      opts,
		logger:    common.Coalesce(logger, slog.Default()),
		pipelines: make(map[Key]Pipeline),
	}
}

func (c *pipelineCache) Get(key Key) (Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}

	variant, err := c.shaders.Get(key.Features)
	if err != nil {
		return nil, err
	}
	p := NewPipeline(key, variant, c.opts...)
	if err := p.Init(c.device); err != nil {
		return nil, common.NewResourceCreationError("pipeline", len(c.pipelines), err)
	}
	c.pipelines[key] = p
	c.logger.Debug("created render pipeline", "key", key.String())
	return p, nil
}

func (c *pipelineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}

func (c *pipelineCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, key)
	}
}
