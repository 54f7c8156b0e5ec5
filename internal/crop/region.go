// Package crop cuts text regions listed in detection label files out of
// their images and builds the recognition label corpus.
package crop

import (
	"image"

	"github.com/MeKo-Tech/pplabel/internal/label"
	"github.com/MeKo-Tech/pplabel/internal/utils"
)

// DefaultMinSize is the smallest crop side, in pixels, that is kept.
const DefaultMinSize = 3

// Region returns the axis-aligned crop of poly's bounding box, clamped to
// the image. It reports false when the clamped box is narrower or shorter
// than minSize.
func Region(img image.Image, poly label.Polygon, minSize int) (image.Image, bool) {
	r := utils.ClampRect(poly.Bounds(), img.Bounds())
	if r.Dx() < minSize || r.Dy() < minSize {
		return nil, false
	}
	return utils.CropImageRect(img, r), true
}

// Budget caps the number of crops produced across a whole run.
type Budget struct {
	max   int
	count int
}

// NewBudget returns a budget allowing limit crops. Zero or a negative
// limit is unbounded.
func NewBudget(limit int) *Budget {
	return &Budget{max: limit}
}

// Record counts one produced crop.
func (b *Budget) Record() { b.count++ }

// Exhausted reports whether no further crops may be produced.
func (b *Budget) Exhausted() bool {
	return b.max > 0 && b.count >= b.max
}

// Count returns the number of recorded crops.
func (b *Budget) Count() int { return b.count }
