package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Ignored by the recording backend.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithFailureInjection makes the creation of the given resource kind fail after `after`
// successful creations. Used to exercise device failure paths.
//
// Parameters:
//   - kind: the resource kind to fail
//   - after: number of creations of that kind that succeed before the failure
//
// Returns:
//   - RendererBuilderOption: a function that installs the failure on a renderer
func WithFailureInjection(kind ResourceKind, after int) RendererBuilderOption {
	return func(r *renderer) {
		r.failures[kind] = after
	}
}
