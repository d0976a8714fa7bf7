package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexedTriangleGLB(t *testing.T) []byte {
	t.Helper()
	g := newTestGLB()
	prim := g.triangle()
	prim.Indices = intPtr(g.accessor(uint16Bytes(0, 1, 2), componentUnsignedShort, 3, "SCALAR"))
	g.node(gltfNode{Mesh: intPtr(g.mesh(prim))})
	return g.encode(t)
}

func TestLoaderCachesByName(t *testing.T) {
	l := NewLoader(BackendTypeGLB, WithLogger(discardLogger()), WithDecodeWorkers(1))
	defer l.Release()

	blob := indexedTriangleGLB(t)
	first, err := l.LoadReader("tri", bytes.NewReader(blob))
	require.NoError(t, err)
	second, err := l.LoadReader("tri", bytes.NewReader(nil))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, l.Get("tri"))
	assert.Nil(t, l.Get("missing"))
	assert.Len(t, l.Models(), 1)
	assert.False(t, first.Uploaded(), "nothing is uploaded without a renderer")
	assert.Nil(t, l.ShaderCache())
}

func TestLoaderLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crate.glb")
	require.NoError(t, os.WriteFile(path, indexedTriangleGLB(t), 0o644))

	l := NewLoader(BackendTypeGLB, WithLogger(discardLogger()), WithDecodeWorkers(0))
	defer l.Release()

	m, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "crate", m.Name())

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, m, again)

	_, err = l.Load(filepath.Join(dir, "crate.obj"))
	assert.ErrorContains(t, err, "unsupported model format")

	_, err = l.Load(filepath.Join(dir, "missing.glb"))
	assert.Error(t, err)
}

func TestLoaderPropagatesImportErrors(t *testing.T) {
	l := NewLoader(BackendTypeGLB, WithLogger(discardLogger()))
	defer l.Release()

	_, err := l.LoadReader("junk", bytes.NewReader([]byte("definitely not a GLB blob")))
	var formatErr *common.FormatError
	require.True(t, errors.As(err, &formatErr), "got %v", err)
	assert.Equal(t, "container.magic", formatErr.Check)
	assert.Empty(t, l.Models())
}

func TestLoaderUploadsAndSharesCaches(t *testing.T) {
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording)
	require.NoError(t, err)
	defer device.Release()

	l := NewLoader(BackendTypeGLB, WithRenderer(device), WithLogger(discardLogger()))
	defer l.Release()
	require.NotNil(t, l.ShaderCache())

	layout, entries, err := l.ShaderCache().BindGroupLayout(shader.GroupView, 0)
	require.NoError(t, err)
	view := bind_group_provider.NewBindGroupProvider("View", entries, bind_group_provider.WithBindGroupLayout(layout))
	require.NoError(t, view.Init(device))
	defer view.Release()

	blob := indexedTriangleGLB(t)
	for _, name := range []string{"a", "b"} {
		m, err := l.LoadReader(name, bytes.NewReader(blob))
		require.NoError(t, err)
		assert.True(t, m.Uploaded())
		require.NoError(t, m.Build(device, view))
		assert.Len(t, m.Bundles(), 1)
	}
	assert.Equal(t, 1, device.Stats().Count(renderer.ResourceRenderPipeline), "models share the pipeline cache")
}

func TestLoaderDropsModelWhenUploadFails(t *testing.T) {
	device, err := renderer.NewRenderer(renderer.BackendTypeRecording, renderer.WithFailureInjection(renderer.ResourceBuffer, 0))
	require.NoError(t, err)
	defer device.Release()

	l := NewLoader(BackendTypeGLB, WithRenderer(device), WithLogger(discardLogger()))
	defer l.Release()

	_, err = l.LoadReader("tri", bytes.NewReader(indexedTriangleGLB(t)))
	var resErr *common.ResourceCreationError
	require.True(t, errors.As(err, &resErr), "got %v", err)
	assert.Equal(t, "buffer_view", resErr.Resource)
	assert.Nil(t, l.Get("tri"))
}

func TestLoaderProfilesStages(t *testing.T) {
	p := profiler.NewProfiler(discardLogger())
	l := NewLoader(BackendTypeGLB, WithLogger(discardLogger()), WithProfiler(p))
	defer l.Release()

	_, err := l.LoadReader("tri", bytes.NewReader(indexedTriangleGLB(t)))
	require.NoError(t, err)

	var stages []string
	for _, s := range p.Stages() {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []string{"container", "views", "images", "materials", "meshes", "flatten", "upload"}, stages)
}

// TestLoaderReadsForeignEncoder imports a file written by an independent glTF encoder.
func TestLoaderReadsForeignEncoder(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{"POSITION": pos, "NORMAL": nrm},
		}},
	}}
	doc.Nodes = []*gltf.Node{{
		Name:        "root",
		Mesh:        gltf.Index(0),
		Matrix:      gltf.DefaultMatrix,
		Rotation:    gltf.DefaultRotation,
		Scale:       gltf.DefaultScale,
		Translation: [3]float64{1, 2, 3},
	}}
	doc.Scenes[0].Name = "interop"
	doc.Scenes[0].Nodes = []int{0}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))

	l := NewLoader(BackendTypeGLB, WithLogger(discardLogger()))
	defer l.Release()
	m, err := l.LoadReader("foreign", &buf)
	require.NoError(t, err)

	assert.Equal(t, "interop", m.Name())
	require.Len(t, m.Nodes(), 1)
	assert.True(t, common.ApproxEqualMat4(mgl32.Translate3D(1, 2, 3), m.Nodes()[0].World, 1e-6))

	prim := m.Nodes()[0].Mesh.Primitives[0]
	assert.Equal(t, shader.FeatureNormals, prim.Features())
	assert.Nil(t, prim.Indices)
	assert.Equal(t, 3, prim.Positions.Count())
	assert.Equal(t, []float32{1, 0, 0}, mustFloat32s(t, prim.Positions, 1))
}

func mustFloat32s(t *testing.T, a interface {
	Float32s(i int) ([]float32, error)
}, i int) []float32 {
	t.Helper()
	v, err := a.Float32s(i)
	require.NoError(t, err)
	return v
}
