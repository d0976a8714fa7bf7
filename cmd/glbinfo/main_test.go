package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleJSON = `{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"name": "demo", "nodes": [0]}],
	"nodes": [{"name": "tri", "mesh": 0, "translation": [0, 0, 5]}],
	"meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}}]}],
	"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
	"bufferViews": [{"buffer": 0, "byteLength": 36}],
	"buffers": [{"byteLength": 36}]
}`

func writeTriangle(t *testing.T) string {
	t.Helper()
	bin := make([]byte, 36)
	for i, v := range []float32{0, 0, 0, 1, 0, 0, 0, 2, 0} {
		binary.LittleEndian.PutUint32(bin[i*4:], math.Float32bits(v))
	}
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, loader.EncodeContainer([]byte(triangleJSON), bin), 0o644))
	return path
}

func TestRunPrintsSummary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-log-level", "error", writeTriangle(t)}, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, `model "demo"`)
	assert.Regexp(t, `render bundles\s+1\n`, out)
	assert.Contains(t, out, "[glb]")
	assert.Contains(t, out, "[0.000 0.000 5.000] - [1.000 2.000 5.000]")
	assert.Contains(t, out, `node 0 "tri" mesh "tri" primitives 1 at (0.000, 0.000, 5.000)`)
}

func TestRunDump(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-dump", "-log-level", "error", writeTriangle(t)}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "(main.summary)")
}

func TestRunRequiresOneFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run(nil, &stdout, &stderr))
}

func TestRunReportsImportFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.glb")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{path}, &stdout, &stderr)
	assert.ErrorContains(t, err, "container.header")
}

func TestConfigFileUnderFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glbinfo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color_format: rgba8unorm\nsample_count: 4\nlog_level: error\ndecode_workers: 0\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	format, err := cfg.colorFormat()
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, format)
	samples, err := cfg.sampleCount()
	require.NoError(t, err)
	assert.Equal(t, renderer.MSAA4x, samples)
	assert.Equal(t, "recording", cfg.Backend, "unset keys keep their defaults")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-config", path, "-sample-count", "1", writeTriangle(t)}, &stdout, &stderr))
}

func TestConfigValidation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Backend = "vulkan"
	_, err := cfg.rendererBackend()
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.SampleCount = 2
	_, err = cfg.sampleCount()
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.ColorFormat = "r8"
	_, err = cfg.colorFormat()
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.LogLevel = "loud"
	_, err = cfg.logLevel()
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
