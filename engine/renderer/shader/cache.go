package shader

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// shaderCache is the implementation of the Cache interface.
type shaderCache struct {
	device renderer.Renderer
	logger *slog.Logger
	label  string

	mu       sync.Mutex
	variants map[Features]Shader
	// sources holds generated and reflected source per feature set, shared by Get and BindGroupLayout.
	sources map[Features]reflectedSource
	// layouts deduplicates bind group layouts by their entries so that variants share them.
	layouts map[string]*renderer.BindGroupLayout
}

// Cache memoizes compiled shader variants by feature set. At most one program exists per Features
// value, so a scene never compiles more than eight programs. A Cache is safe for concurrent use.
type Cache interface {
	// Get returns the variant for features, generating and compiling it on first use.
	//
	// Parameters:
	//   - features: the variant's feature set
	//
	// Returns:
	//   - Shader: the cached variant
	//   - error: a ResourceCreationError if compiling or creating its layouts fails
	Get(features Features) (Shader, error)

	// Variant is Get in boolean form.
	//
	// Parameters:
	//   - hasNormals: whether the primitive has normals
	//   - hasUVs: whether the primitive has texture coordinates
	//   - hasColorTexture: whether the material has a base color texture
	//
	// Returns:
	//   - Shader: the cached variant
	//   - error: error if the variant could not be created
	Variant(hasNormals, hasUVs, hasColorTexture bool) (Shader, error)

	// BindGroupLayout returns the shared layout of one group of the variant for features without
	// compiling the program. Materials use it to build their group 2 bind group before any pipeline exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - features: the variant's feature set
	//
	// Returns:
	//   - *renderer.BindGroupLayout: the shared layout
	//   - []wgpu.BindGroupLayoutEntry: the reflected entries
	//   - error: error if the group is not declared or layout creation fails
	BindGroupLayout(group int, features Features) (*renderer.BindGroupLayout, []wgpu.BindGroupLayoutEntry, error)

	// Len reports the number of compiled variants.
	//
	// Returns:
	//   - int: the number of distinct programs
	Len() int

	// Release releases every variant and every shared layout.
	Release()
}

var _ Cache = &shaderCache{}

type reflectedSource struct {
	source     string
	reflection reflection
}

// NewCache creates an empty variant cache compiling through device.
//
// Parameters:
//   - device: the renderer used to compile programs and create layouts
//   - options: a variadic list of CacheOption functions
//
// Returns:
//   - Cache: the new cache
func NewCache(device renderer.Renderer, options ...CacheOption) Cache {
	c := &shaderCache{
		device:   device,
		logger:   slog.Default(),
		label:    "GLB",
		variants: make(map[Features]Shader),
		sources:  make(map[Features]reflectedSource),
		layouts:  make(map[string]*renderer.BindGroupLayout),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *shaderCache) Get(features Features) (Shader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.variants[features]; ok {
		return s, nil
	}

	s, err := c.compile(features)
	if err != nil {
		return nil, common.NewResourceCreationError("shader", int(features), err)
	}
	c.variants[features] = s
	c.logger.Debug("compiled shader variant", "key", s.Key(), "variants", len(c.variants))
	return s, nil
}

func (c *shaderCache) Variant(hasNormals, hasUVs, hasColorTexture bool) (Shader, error) {
	return c.Get(NewFeatures(hasNormals, hasUVs, hasColorTexture))
}

func (c *shaderCache) BindGroupLayout(group int, features Features) (*renderer.BindGroupLayout, []wgpu.BindGroupLayoutEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.sourceFor(features).reflection.bindGroups[group]
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("shader %s declares no bind group %d", features.Key(), group)
	}
	layout, err := c.layoutFor(group, entries)
	if err != nil {
		return nil, nil, common.NewResourceCreationError("bind_group_layout", group, err)
	}
	return layout, entries, nil
}

func (c *shaderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.variants)
}

func (c *shaderCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for features, s := range c.variants {
		s.Release()
		delete(c.variants, features)
	}
	clear(c.sources)
	for key, layout := range c.layouts {
		layout.Release()
		delete(c.layouts, key)
	}
}

// compile generates, reflects and compiles one variant. Callers hold c.mu.
func (c *shaderCache) compile(features Features) (*shader, error) {
	src := c.sourceFor(features)
	source := src.source
	s := &shader{
		features:   features,
		source:     source,
		reflection: src.reflection,
	}

	groups := make([]*renderer.BindGroupLayout, GroupMaterial+1)
	for group := range groups {
		entries := s.reflection.bindGroups[group]
		if len(entries) == 0 {
			return nil, fmt.Errorf("%s: bind group %d has no bindings", features.Key(), group)
		}
		layout, err := c.layoutFor(group, entries)
		if err != nil {
			return nil, err
		}
		groups[group] = layout
	}
	s.bindGroupLayouts = groups

	module, err := c.device.CreateShaderModule(fmt.Sprintf("%s Shader %s", c.label, features.Key()), source)
	if err != nil {
		return nil, err
	}
	s.module = module

	pipelineLayout, err := c.device.CreatePipelineLayout(fmt.Sprintf("%s Pipeline Layout %s", c.label, features.Key()), groups)
	if err != nil {
		module.Release()
		return nil, err
	}
	s.pipelineLayout = pipelineLayout

	return s, nil
}

// sourceFor generates and reflects the source of features once. Callers hold c.mu.
func (c *shaderCache) sourceFor(features Features) reflectedSource {
	if src, ok := c.sources[features]; ok {
		return src
	}
	source := generateSource(features)
	src := reflectedSource{source: source, reflection: reflectSource(source, bindingVisibility)}
	c.sources[features] = src
	return src
}

// layoutFor returns the shared layout for entries, creating it on first use. Callers hold c.mu.
func (c *shaderCache) layoutFor(group int, entries []wgpu.BindGroupLayoutEntry) (*renderer.BindGroupLayout, error) {
	key := entriesKey(entries)
	if layout, ok := c.layouts[key]; ok {
		return layout, nil
	}
	layout, err := c.device.CreateBindGroupLayout(fmt.Sprintf("%s Bind Group Layout %d (%d bindings)", c.label, group, len(entries)), entries)
	if err != nil {
		return nil, err
	}
	c.layouts[key] = layout
	return layout, nil
}

// entriesKey renders the fields of layout entries that matter for compatibility into a map key.
func entriesKey(entries []wgpu.BindGroupLayoutEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%d:%d:%d/%d:%d:%d/%d",
			e.Binding, e.Visibility,
			e.Buffer.Type, e.Buffer.MinBindingSize,
			e.Sampler.Type,
			e.Texture.SampleType, e.Texture.ViewDimension)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
