// glbinfo imports a GLB file, uploads it, records its render bundles and prints what was created.
//
// Usage:
//
//	glbinfo [-config glbinfo.yaml] [-backend recording|wgpu] [-dump] model.glb
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "glbinfo:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("glbinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	defaults := defaultConfig()
	configPath := fs.String("config", "", "YAML config file; flags override its values")
	backend := fs.String("backend", defaults.Backend, "device backend: recording or wgpu")
	fallback := fs.Bool("force-fallback-adapter", defaults.ForceFallbackAdapter, "use the software adapter (wgpu backend)")
	colorFormat := fs.String("color-format", defaults.ColorFormat, "color attachment format of the render bundles")
	sampleCount := fs.Uint("sample-count", uint(defaults.SampleCount), "multisample count: 1, 4 or 8")
	workers := fs.Int("decode-workers", defaults.DecodeWorkers, "image decode workers, 0 decodes inline")
	logLevel := fs.String("log-level", defaults.LogLevel, "debug, info, warn or error")
	dump := fs.Bool("dump", defaults.Dump, "dump the summary structure")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one .glb file")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "force-fallback-adapter":
			cfg.ForceFallbackAdapter = *fallback
		case "color-format":
			cfg.ColorFormat = *colorFormat
		case "sample-count":
			cfg.SampleCount = uint32(*sampleCount)
		case "decode-workers":
			cfg.DecodeWorkers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "dump":
			cfg.Dump = *dump
		}
	})

	return inspect(fs.Arg(0), cfg, stdout, stderr)
}

// inspect runs the full pipeline on path: import, upload, build, summary.
func inspect(path string, cfg config, stdout, stderr io.Writer) error {
	level, err := cfg.logLevel()
	if err != nil {
		return err
	}
	backendType, err := cfg.rendererBackend()
	if err != nil {
		return err
	}
	format, err := cfg.colorFormat()
	if err != nil {
		return err
	}
	samples, err := cfg.sampleCount()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	device, err := renderer.NewRenderer(backendType, renderer.WithForceSoftwareRenderer(cfg.ForceFallbackAdapter))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s device", backendType)
	}
	defer device.Release()

	l := loader.NewLoader(loader.BackendTypeGLB,
		loader.WithRenderer(device),
		loader.WithLogger(logger),
		loader.WithProfiler(profiler.NewProfiler(logger)),
		loader.WithDecodeWorkers(cfg.DecodeWorkers),
		loader.WithColorFormat(format),
		loader.WithSampleCount(samples),
	)
	defer l.Release()

	m, err := l.Load(path)
	if err != nil {
		return err
	}

	cam := camera.NewCamera()
	if lo, hi, ok := worldBounds(m); ok {
		cam.FrameBounds(lo, hi)
	}
	uniform := cam.Uniform()
	logger.Debug("framed model", "model", m.Name(), "eye", cam.Position(), "target", cam.Target())

	layout, entries, err := l.ShaderCache().BindGroupLayout(shader.GroupView, 0)
	if err != nil {
		return errors.Wrap(err, "failed to create view layout")
	}
	view := bind_group_provider.NewBindGroupProvider("View", entries,
		bind_group_provider.WithBindGroupLayout(layout),
		bind_group_provider.WithData(0, uniform.Marshal()),
	)
	if err := view.Init(device); err != nil {
		return errors.Wrap(err, "failed to create view bind group")
	}
	defer view.Release()

	if err := m.Build(device, view); err != nil {
		return errors.Wrapf(err, "failed to build %s", m.Name())
	}

	s := summarize(m, device)
	s.print(stdout)
	if cfg.Dump {
		spew.Fdump(stdout, s)
	}
	return nil
}
