package loader

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	componentFloat         = 5126
	componentUnsignedShort = 5123
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func floatBytes(values ...float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func uint16Bytes(values ...uint16) []byte {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// testGLB assembles a GLB blob from a document and a growing BIN chunk.
type testGLB struct {
	doc gltfDocument
	bin []byte
}

func newTestGLB() *testGLB {
	return &testGLB{doc: gltfDocument{Asset: gltfAsset{Version: "2.0"}}}
}

func (g *testGLB) view(data []byte) int {
	for len(g.bin)%4 != 0 {
		g.bin = append(g.bin, 0)
	}
	g.doc.BufferViews = append(g.doc.BufferViews, gltfBufferView{ByteOffset: len(g.bin), ByteLength: len(data)})
	g.bin = append(g.bin, data...)
	return len(g.doc.BufferViews) - 1
}

func (g *testGLB) accessor(data []byte, componentType, count int, typ string) int {
	v := g.view(data)
	g.doc.Accessors = append(g.doc.Accessors, gltfAccessor{BufferView: &v, ComponentType: componentType, Count: count, Type: typ})
	return len(g.doc.Accessors) - 1
}

func (g *testGLB) triangle() gltfPrimitive {
	pos := g.accessor(floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0), componentFloat, 3, "VEC3")
	return gltfPrimitive{Attributes: map[string]int{"POSITION": pos}}
}

func (g *testGLB) mesh(prims ...gltfPrimitive) int {
	g.doc.Meshes = append(g.doc.Meshes, gltfMesh{Primitives: prims})
	return len(g.doc.Meshes) - 1
}

func (g *testGLB) node(n gltfNode) int {
	g.doc.Nodes = append(g.doc.Nodes, n)
	return len(g.doc.Nodes) - 1
}

func (g *testGLB) encode(t *testing.T) []byte {
	t.Helper()
	if len(g.bin) > 0 {
		g.doc.Buffers = []gltfBuffer{{ByteLength: len(g.bin)}}
	}
	js, err := json.Marshal(&g.doc)
	require.NoError(t, err)
	return EncodeContainer(js, g.bin)
}

func importGLB(t *testing.T, blob []byte, pool worker.DynamicWorkerPool) (model.Model, error) {
	t.Helper()
	imp := newGLTFImporter(discardLogger(), pool, nil, nil)
	return imp.ImportReader("test", bytes.NewReader(blob))
}

func TestImportMinimalPositionOnly(t *testing.T) {
	g := newTestGLB()
	g.node(gltfNode{Mesh: intPtr(g.mesh(g.triangle()))})

	m, err := importGLB(t, g.encode(t), nil)
	require.NoError(t, err)

	assert.Equal(t, "test", m.Name())
	require.Len(t, m.Nodes(), 1)
	require.Len(t, m.Materials(), 1, "the default material is created on demand")
	assert.Equal(t, "default", m.Materials()[0].Name())

	prim := m.Nodes()[0].Mesh.Primitives[0]
	assert.Equal(t, shader.Features(0), prim.Features())
	assert.Same(t, m.Materials()[0], prim.Material)
	assert.Equal(t, mgl32.Ident4(), m.Nodes()[0].World)
	assert.Equal(t, wgpu.BufferUsageVertex, m.BufferViews()[0].Usage())
}

func TestImportNamesModelAfterDefaultScene(t *testing.T) {
	g := newTestGLB()
	g.node(gltfNode{Mesh: intPtr(g.mesh(g.triangle()))})
	g.doc.Scene = intPtr(0)
	g.doc.Scenes = []gltfScene{{Name: "Showroom", Nodes: []int{0}}}

	m, err := importGLB(t, g.encode(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "Showroom", m.Name())
}

func TestImportSkipsUnsupportedTopology(t *testing.T) {
	g := newTestGLB()
	fan := g.triangle()
	fan.Mode = intPtr(int(model.ModeTriangleFan))
	list := g.triangle()
	g.node(gltfNode{Mesh: intPtr(g.mesh(fan, list))})

	m, err := importGLB(t, g.encode(t), nil)
	require.NoError(t, err)

	prims := m.Meshes()[0].Primitives
	require.Len(t, prims, 1)
	assert.Equal(t, 1, prims[0].Index)
	assert.Equal(t, wgpu.BufferUsage(0), m.BufferViews()[0].Usage(), "skipped primitive leaves its view unused")
}

func TestImportSkipsNonFloatAttribute(t *testing.T) {
	g := newTestGLB()
	bad := g.triangle()
	bad.Attributes["NORMAL"] = g.accessor(uint16Bytes(1, 2, 3, 4, 5, 6, 7, 8, 9, 0), componentUnsignedShort, 3, "VEC3")
	g.node(gltfNode{Mesh: intPtr(g.mesh(bad, g.triangle()))})

	m, err := importGLB(t, g.encode(t), nil)
	require.NoError(t, err)
	require.Len(t, m.Meshes()[0].Primitives, 1)
}

func TestImportReferenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *testGLB)
		check string
	}{
		{"node mesh", func(g *testGLB) { g.node(gltfNode{Mesh: intPtr(5)}) }, "node.mesh"},
		{"node child", func(g *testGLB) { g.node(gltfNode{Children: []int{3}}) }, "node.child"},
		{"primitive material", func(g *testGLB) {
			p := g.triangle()
			p.Material = intPtr(2)
			g.node(gltfNode{Mesh: intPtr(g.mesh(p))})
		}, "primitive.material"},
		{"primitive attribute", func(g *testGLB) {
			g.node(gltfNode{Mesh: intPtr(g.mesh(gltfPrimitive{Attributes: map[string]int{"POSITION": 9}}))})
		}, "primitive.attribute"},
		{"texture source", func(g *testGLB) {
			g.doc.Textures = []gltfTexture{{Source: intPtr(1)}}
		}, "texture.source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGLB()
			tt.build(g)
			_, err := importGLB(t, g.encode(t), nil)
			var refErr *common.ReferenceError
			require.True(t, errors.As(err, &refErr), "got %v", err)
			assert.Equal(t, tt.check, refErr.Check)
		})
	}
}

func TestImportRejectsRequiredExtension(t *testing.T) {
	g := newTestGLB()
	g.doc.ExtensionsRequired = []string{"KHR_draco_mesh_compression"}

	_, err := importGLB(t, g.encode(t), nil)
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestImportRejectsMatrixWithTRS(t *testing.T) {
	g := newTestGLB()
	identity := [16]float32(mgl32.Ident4())
	g.node(gltfNode{Matrix: &identity, Scale: &[3]float32{2, 2, 2}})

	_, err := importGLB(t, g.encode(t), nil)
	var formatErr *common.FormatError
	require.True(t, errors.As(err, &formatErr), "got %v", err)
	assert.Equal(t, "node.matrix_and_trs", formatErr.Check)
	assert.Equal(t, 0, formatErr.Index)
}

func TestImportRejectsExternalResources(t *testing.T) {
	g := newTestGLB()
	g.doc.Images = []gltfImage{{URI: "albedo.png"}}
	_, err := importGLB(t, g.encode(t), nil)
	var unsupported *common.UnsupportedFeatureError
	require.True(t, errors.As(err, &unsupported), "got %v", err)
	assert.Equal(t, "image.uri", unsupported.Check)

	g = newTestGLB()
	g.doc.Buffers = []gltfBuffer{{ByteLength: 4, URI: "data.bin"}}
	js, err := json.Marshal(&g.doc)
	require.NoError(t, err)
	_, err = importGLB(t, EncodeContainer(js, nil), nil)
	require.True(t, errors.As(err, &unsupported), "got %v", err)
	assert.Equal(t, "buffer.uri", unsupported.Check)
}

func TestImportComposesNodeTransforms(t *testing.T) {
	g := newTestGLB()
	mesh := g.mesh(g.triangle())
	g.node(gltfNode{Children: []int{1}, Translation: &[3]float32{1, 0, 0}})
	g.node(gltfNode{Mesh: &mesh, Scale: &[3]float32{2, 2, 2}})

	m, err := importGLB(t, g.encode(t), nil)
	require.NoError(t, err)
	require.Len(t, m.Nodes(), 1)

	want := mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	assert.True(t, common.ApproxEqualMat4(want, m.Nodes()[0].World, 1e-6))
	assert.Equal(t, 1, m.Nodes()[0].Index)
}

func TestSamplerModeMapping(t *testing.T) {
	data := gltfSamplerData(gltfSampler{
		MagFilter: intPtr(9728),
		WrapS:     intPtr(gltfWrapClampToEdge),
		WrapT:     intPtr(33648),
	})
	assert.Equal(t, wgpu.FilterModeNearest, data.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, data.MinFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, data.AddressModeU)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, data.AddressModeV)
	assert.Equal(t, wgpu.AddressModeRepeat, data.AddressModeW)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, data.MipmapFilter)

	defaults := gltfSamplerData(gltfSampler{})
	assert.Equal(t, wgpu.FilterModeLinear, defaults.MagFilter)
	assert.Equal(t, wgpu.AddressModeRepeat, defaults.AddressModeU)
}

func texturedGLB(t *testing.T, imageData []byte) []byte {
	t.Helper()
	g := newTestGLB()
	img := g.view(imageData)
	g.doc.Images = []gltfImage{{Name: "albedo", BufferView: &img, MimeType: "image/png"}}
	g.doc.Textures = []gltfTexture{{Source: intPtr(0)}}
	g.doc.Materials = []gltfMaterial{{
		Name:        "painted",
		DoubleSided: true,
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorTexture: &gltfTextureInfo{Index: 0},
			MetallicFactor:   new(float32),
		},
	}}

	prim := g.triangle()
	prim.Attributes["TEXCOORD_0"] = g.accessor(floatBytes(0, 0, 1, 0, 0, 1), componentFloat, 3, "VEC2")
	prim.Material = intPtr(0)
	g.node(gltfNode{Mesh: intPtr(g.mesh(prim))})
	return g.encode(t)
}

func TestImportDecodesEmbeddedImages(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(2, 8, time.Second)
	defer pool.Stop()

	for name, p := range map[string]worker.DynamicWorkerPool{"pool": pool, "inline": nil} {
		t.Run(name, func(t *testing.T) {
			m, err := importGLB(t, texturedGLB(t, encodePNG(t, 2, 3)), p)
			require.NoError(t, err)

			require.Len(t, m.Images(), 1)
			assert.Equal(t, uint32(2), m.Images()[0].Data().Width)
			assert.Equal(t, uint32(3), m.Images()[0].Data().Height)
			assert.Len(t, m.Images()[0].Data().Pixels, 2*3*4)

			require.Len(t, m.Samplers(), 1, "the default sampler is appended")
			assert.Equal(t, common.NoIndex, m.Samplers()[0].Index())
			assert.Same(t, m.Samplers()[0], m.Textures()[0].Sampler())

			require.Len(t, m.Materials(), 1)
			mat := m.Materials()[0]
			assert.True(t, mat.DoubleSided())
			assert.Zero(t, mat.MetallicFactor())
			assert.Same(t, m.Textures()[0], mat.BaseColorTexture())

			prim := m.Nodes()[0].Mesh.Primitives[0]
			assert.Equal(t, shader.FeatureUVs|shader.FeatureColorTexture, prim.Features())
		})
	}
}

func TestImportReportsUndecodableImage(t *testing.T) {
	_, err := importGLB(t, texturedGLB(t, []byte("not an image")), nil)
	var formatErr *common.FormatError
	require.True(t, errors.As(err, &formatErr), "got %v", err)
	assert.Equal(t, "image.decode", formatErr.Check)
	assert.Equal(t, 0, formatErr.Index)
}

func TestImportRejectsBadAssetVersion(t *testing.T) {
	g := newTestGLB()
	g.doc.Asset.Version = "1.0"
	_, err := importGLB(t, g.encode(t), nil)
	var formatErr *common.FormatError
	require.True(t, errors.As(err, &formatErr), "got %v", err)
	assert.Equal(t, "document.asset_version", formatErr.Check)
}
