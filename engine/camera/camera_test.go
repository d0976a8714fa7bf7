package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestViewUniformLayout(t *testing.T) {
	u := GPUViewUniform{ViewProj: mgl32.Translate3D(1, 2, 3)}
	assert.Equal(t, 64, u.Size())
	buf := u.Marshal()
	assert.Len(t, buf, 64)
	assert.Equal(t, math.Float32bits(1), uint32(buf[48])|uint32(buf[49])<<8|uint32(buf[50])<<16|uint32(buf[51])<<24)
}

func TestProjectionUsesZeroToOneDepth(t *testing.T) {
	c := NewCamera(WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}), WithNear(1), WithFar(100))

	project := func(p mgl32.Vec3) float32 {
		clip := c.ViewProjectionMatrix().Mul4x1(p.Vec4(1))
		return clip.Z() / clip.W()
	}
	assert.InDelta(t, 0, project(mgl32.Vec3{0, 0, 9}), 1e-5, "near plane maps to 0")
	assert.InDelta(t, 1, project(mgl32.Vec3{0, 0, -90}), 1e-4, "far plane maps to 1")
}

func TestFrameBoundsKeepsDirection(t *testing.T) {
	c := NewCamera(WithLookAt(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{}))
	c.FrameBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 1, 1})

	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c.Target())
	pos := c.Position()
	assert.InDelta(t, 0, pos.Y(), 1e-6)
	assert.InDelta(t, 0, pos.Z(), 1e-6)
	assert.Greater(t, pos.X(), float32(1))

	// every corner lands inside the clip volume
	for _, corner := range []mgl32.Vec3{{-1, -1, -1}, {3, 1, 1}, {-1, 1, 1}, {3, -1, -1}} {
		clip := c.ViewProjectionMatrix().Mul4x1(corner.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip.W())
		assert.LessOrEqual(t, math.Abs(float64(ndc.X())), 1.0+1e-4)
		assert.LessOrEqual(t, math.Abs(float64(ndc.Y())), 1.0+1e-4)
		assert.GreaterOrEqual(t, ndc.Z(), float32(-1e-4))
		assert.LessOrEqual(t, ndc.Z(), float32(1+1e-4))
	}
}
