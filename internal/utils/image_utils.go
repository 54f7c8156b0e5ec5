package utils

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ClampRect clamps every edge of r into bounds independently. Unlike
// image.Rectangle.Intersect, a rectangle lying fully outside bounds keeps
// its position on the nearest edge and ends up with zero size.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(clampInt(r.Min.X, bounds.Min.X, bounds.Max.X), clampInt(r.Min.Y, bounds.Min.Y, bounds.Max.Y)),
		Max: image.Pt(clampInt(r.Max.X, bounds.Min.X, bounds.Max.X), clampInt(r.Max.Y, bounds.Min.Y, bounds.Max.Y)),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CropImageRect crops an image to the given rectangle.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}
