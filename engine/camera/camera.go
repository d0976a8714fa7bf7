package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// zeroToOneDepth remaps the [-1, 1] clip depth produced by mgl32.Perspective to the [0, 1] range WebGPU uses.
var zeroToOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32
}

// Camera holds a perspective look-at camera and produces the view uniform of bind group 0.
type Camera interface {
	// Position returns the eye position.
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the world-to-view transform
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix with WebGPU's [0, 1] depth range.
	//
	// Returns:
	//   - mgl32.Mat4: the view-to-clip transform
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: projection * view
	ViewProjectionMatrix() mgl32.Mat4

	// Uniform returns the view uniform written to binding 0 of bind group 0.
	//
	// Returns:
	//   - GPUViewUniform: the uniform block
	Uniform() GPUViewUniform

	// SetLookAt moves the camera.
	//
	// Parameters:
	//   - position: the eye position
	//   - target: the point the camera looks at
	SetLookAt(position, target mgl32.Vec3)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// FrameBounds moves the camera back along its current viewing direction until the sphere around
	// the axis-aligned box [min, max] fills the field of view, and fits the clip planes around it.
	//
	// Parameters:
	//   - min: the smallest corner of the box
	//   - max: the largest corner of the box
	FrameBounds(min, max mgl32.Vec3)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at (0, 0, 1) looking at the origin with a 45 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 1},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      45.0 * (math.Pi / 180.0),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix()
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix().Mul4(c.viewMatrix())
}

func (c *cameraImpl) Uniform() GPUViewUniform {
	return GPUViewUniform{ViewProj: c.ViewProjectionMatrix()}
}

func (c *cameraImpl) SetLookAt(position, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.target = target
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) FrameBounds(min, max mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	center := min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	if radius < 1e-3 {
		radius = 1e-3
	}

	dir := c.position.Sub(c.target)
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	distance := radius / float32(math.Sin(float64(c.fov)/2))

	c.target = center
	c.position = center.Add(dir.Normalize().Mul(distance))
	c.near = distance - radius
	if floor := radius * 0.01; c.near < floor {
		c.near = floor
	}
	c.far = distance + radius
}

// viewMatrix and projectionMatrix expect the mutex to be held.
func (c *cameraImpl) viewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.target, c.up)
}

func (c *cameraImpl) projectionMatrix() mgl32.Mat4 {
	return zeroToOneDepth.Mul4(mgl32.Perspective(c.fov, c.aspect, c.near, c.far))
}
