// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero values are replaced by the linear/repeat defaults when the sampler is created.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// EncodedImage is an image blob embedded in a model file that has not been decoded yet.
type EncodedImage struct {
	// Name is an optional identifier taken from the source file.
	Name string

	// Data contains the raw encoded bytes (PNG, JPEG, WebP or BMP).
	Data []byte

	// MimeType indicates the declared image format (e.g., "image/png").
	MimeType string
}

// Decode decodes the image to tightly packed RGBA pixel data.
// The codec is chosen from the data itself; MimeType is informational.
//
// Returns:
//   - TextureStagingData: RGBA pixels with width and height
//   - error: error if the data is empty or cannot be decoded
func (e *EncodedImage) Decode() (TextureStagingData, error) {
	if e == nil || len(e.Data) == 0 {
		return TextureStagingData{}, errors.New("image has no data")
	}

	img, _, err := image.Decode(bytes.NewReader(e.Data))
	if err != nil {
		return TextureStagingData{}, errors.Wrapf(err, "failed to decode %s image", Coalesce(e.MimeType, "embedded"))
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
