package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// config holds the glbinfo settings. Values come from defaults, then the YAML file, then flags.
type config struct {
	Backend              string `yaml:"backend"`
	ForceFallbackAdapter bool   `yaml:"force_fallback_adapter"`
	ColorFormat          string `yaml:"color_format"`
	SampleCount          uint32 `yaml:"sample_count"`
	DecodeWorkers        int    `yaml:"decode_workers"`
	LogLevel             string `yaml:"log_level"`
	Dump                 bool   `yaml:"dump"`
}

func defaultConfig() config {
	return config{
		Backend:       "recording",
		ColorFormat:   "bgra8unorm",
		SampleCount:   uint32(renderer.MSAAOff),
		DecodeWorkers: 4,
		LogLevel:      "info",
	}
}

// loadConfig reads the YAML file at path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, nil
}

func (c config) rendererBackend() (renderer.RendererBackendType, error) {
	switch strings.ToLower(c.Backend) {
	case "recording", "":
		return renderer.BackendTypeRecording, nil
	case "wgpu":
		return renderer.BackendTypeWGPU, nil
	}
	return 0, errors.Errorf("unknown backend %q (want wgpu or recording)", c.Backend)
}

var colorFormats = map[string]wgpu.TextureFormat{
	"bgra8unorm":      wgpu.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": wgpu.TextureFormatBGRA8UnormSrgb,
	"rgba8unorm":      wgpu.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": wgpu.TextureFormatRGBA8UnormSrgb,
	"rgba16float":     wgpu.TextureFormatRGBA16Float,
}

func (c config) colorFormat() (wgpu.TextureFormat, error) {
	if f, ok := colorFormats[strings.ToLower(c.ColorFormat)]; ok {
		return f, nil
	}
	return wgpu.TextureFormatUndefined, errors.Errorf("unknown color format %q", c.ColorFormat)
}

func (c config) sampleCount() (renderer.MSAASampleCount, error) {
	switch renderer.MSAASampleCount(c.SampleCount) {
	case renderer.MSAAOff, renderer.MSAA4x, renderer.MSAA8x:
		return renderer.MSAASampleCount(c.SampleCount), nil
	}
	return 0, errors.Errorf("sample count %d is not 1, 4 or 8", c.SampleCount)
}

func (c config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return level, nil
}
