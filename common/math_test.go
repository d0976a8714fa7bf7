package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAlignTo(t *testing.T) {
	cases := []struct {
		n, align, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{7, 4, 8},
		{8, 4, 8},
		{9, 4, 12},
		{13, 8, 16},
		{5, 1, 5},
		{5, 0, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AlignTo(c.n, c.align), "AlignTo(%d, %d)", c.n, c.align)
	}
}

func TestAlignToIsSmallestMultiple(t *testing.T) {
	for _, align := range []int{2, 4, 8, 16} {
		for n := 0; n < 64; n++ {
			got := AlignTo(n, align)
			assert.GreaterOrEqual(t, got, n)
			assert.Zero(t, got%align)
			assert.Less(t, got-n, align)
		}
	}
}

func TestComposeTRSIdentity(t *testing.T) {
	m := ComposeTRS(IdentityRotation, [3]float32{}, IdentityScale)
	assert.True(t, ApproxEqualMat4(mgl32.Ident4(), m, 1e-6))
}

func TestComposeTRSOrder(t *testing.T) {
	// 90 degrees about Z, then a translation along X in the rotated frame.
	q := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	rot := [4]float32{q.V[0], q.V[1], q.V[2], q.W}

	m := ComposeTRS(rot, [3]float32{1, 0, 0}, [3]float32{2, 2, 2})
	origin := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})

	assert.InDelta(t, 0, origin[0], 1e-5)
	assert.InDelta(t, 1, origin[1], 1e-5)
	assert.InDelta(t, 0, origin[2], 1e-5)

	unitX := m.Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, 2, unitX.Len(), 1e-5)
}

func TestMatrixBytes(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	b := MatrixBytes(m)
	assert.Len(t, b, 64)
	// column-major: translation lives in elements 12..14
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, b[48:52])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, b[52:56])
	assert.Equal(t, []byte{0x00, 0x00, 0x40, 0x40}, b[56:60])
}
