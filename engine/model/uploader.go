package model

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
)

// UploadStats counts what one Upload call created on the device.
type UploadStats struct {
	Buffers     int
	BufferBytes int
	Textures    int
	Materials   int
}

// ResourceUploader moves imported resources to the device in two stages: it seals every buffer
// view so usage can no longer change, then creates each buffer, texture and material bind group.
// Resources that are already uploaded are skipped, so Upload may be called repeatedly.
type ResourceUploader struct {
	device  renderer.Renderer
	shaders shader.Cache
	logger  *slog.Logger
}

// NewResourceUploader creates an uploader for device. Material layouts come from shaders.
//
// Parameters:
//   - device: the renderer to upload to
//   - shaders: the variant cache that owns the material bind group layouts
//   - logger: the logger for upload summaries, or nil for slog.Default()
//
// Returns:
//   - *ResourceUploader: the uploader
func NewResourceUploader(device renderer.Renderer, shaders shader.Cache, logger *slog.Logger) *ResourceUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceUploader{device: device, shaders: shaders, logger: logger}
}

// Upload seals views, then uploads views with usage, textures and materials in that order.
//
// Parameters:
//   - views: every buffer view of the import
//   - textures: every texture of the import
//   - materials: every material of the import, including the default material if one was created
//
// Returns:
//   - UploadStats: what this call created
//   - error: the first ResourceCreationError
func (u *ResourceUploader) Upload(views []*BufferView, textures []*material.Texture, materials []material.Material) (UploadStats, error) {
	var stats UploadStats

	for _, v := range views {
		v.Seal()
	}

	for _, v := range views {
		if !v.NeedsUpload() {
			continue
		}
		if err := v.Upload(u.device); err != nil {
			return stats, err
		}
		stats.Buffers++
		stats.BufferBytes += int(v.GPU().Size())
	}

	for _, t := range textures {
		if !t.NeedsUpload() {
			continue
		}
		if err := t.Upload(u.device); err != nil {
			return stats, err
		}
		stats.Textures++
	}

	for _, m := range materials {
		if !m.NeedsUpload() {
			continue
		}
		if err := m.Upload(u.device, u.shaders); err != nil {
			return stats, err
		}
		stats.Materials++
	}

	u.logger.Debug("uploaded resources",
		"buffers", stats.Buffers, "buffer_bytes", stats.BufferBytes,
		"textures", stats.Textures, "materials", stats.Materials)
	return stats, nil
}
