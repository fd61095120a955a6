package storage

import (
	"fmt"
	"image"
)

// CropParams describe the client's avatar framing: the on-screen zoom factor
// and the normalized offset of the visible window's top-left corner within the
// source image (0..1 of the source dimensions).
type CropParams struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// CropRect converts crop parameters into a square crop rectangle in source
// pixel space. The visible window is the source divided by the zoom factor;
// the offsets place it, and everything is clamped so the rectangle always lies
// fully inside the image.
func CropRect(srcW, srcH int, p CropParams) (image.Rectangle, error) {
	if srcW <= 0 || srcH <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid source dimensions %dx%d", srcW, srcH)
	}

	scale := p.Scale
	if scale < 1 {
		scale = 1
	}
	if scale > 10 {
		scale = 10
	}

	// Square side: the smaller source dimension divided by the zoom.
	shorter := srcW
	if srcH < shorter {
		shorter = srcH
	}
	side := float64(shorter) / scale
	if side < 1 {
		side = 1
	}

	x := p.OffsetX * float64(srcW)
	y := p.OffsetY * float64(srcH)

	// Clamp so the window stays inside the source.
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+side > float64(srcW) {
		x = float64(srcW) - side
	}
	if y+side > float64(srcH) {
		y = float64(srcH) - side
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	return image.Rect(int(x), int(y), int(x+side), int(y+side)), nil
}
