package shader

import "log/slog"

// CacheOption is a functional option used to configure a Cache during construction.
type CacheOption func(*shaderCache)

// WithLogger sets the logger used to report compiled variants.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - CacheOption: a function that sets the logger
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *shaderCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLabel sets the prefix of the debug labels given to modules and layouts.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - CacheOption: a function that sets the label prefix
func WithLabel(label string) CacheOption {
	return func(c *shaderCache) {
		c.label = label
	}
}
