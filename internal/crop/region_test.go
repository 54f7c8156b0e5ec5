package crop

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/pplabel/internal/label"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegion(t *testing.T) {
	img := imaging.New(100, 100, color.White)

	tests := []struct {
		name   string
		poly   label.Polygon
		ok     bool
		width  int
		height int
	}{
		{"inside", label.PolygonFromBox(10, 10, 5, 5), true, 5, 5},
		{"clamped at origin", label.PolygonFromBox(-5, -5, 10, 10), true, 5, 5},
		{"clamped at far edge", label.PolygonFromBox(95, 90, 20, 20), true, 5, 10},
		{"exactly min size", label.PolygonFromBox(0, 0, 3, 3), true, 3, 3},
		{"too narrow", label.PolygonFromBox(10, 10, 2, 50), false, 0, 0},
		{"too short", label.PolygonFromBox(10, 10, 50, 2), false, 0, 0},
		{"fully outside", label.PolygonFromBox(150, 150, 20, 20), false, 0, 0},
		{"skewed quad", label.Polygon{10, 12, 30, 10, 32, 20, 12, 22}, true, 22, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Region(img, tt.poly, DefaultMinSize)
			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, image.Rect(0, 0, tt.width, tt.height), got.Bounds())
		})
	}
}

func TestRegionKeepsPixels(t *testing.T) {
	img := imaging.New(20, 20, color.White)
	img.Set(6, 7, color.NRGBA{R: 200, A: 255})

	got, ok := Region(img, label.PolygonFromBox(5, 5, 4, 4), DefaultMinSize)
	require.True(t, ok)
	r, _, _, _ := got.At(1, 2).RGBA()
	assert.Equal(t, uint32(200)<<8|200, r)
}

func TestBudget(t *testing.T) {
	t.Run("unbounded", func(t *testing.T) {
		b := NewBudget(0)
		for range 1000 {
			b.Record()
		}
		assert.False(t, b.Exhausted())
		assert.Equal(t, 1000, b.Count())
	})

	t.Run("negative is unbounded", func(t *testing.T) {
		b := NewBudget(-1)
		b.Record()
		assert.False(t, b.Exhausted())
	})

	t.Run("bounded", func(t *testing.T) {
		b := NewBudget(2)
		assert.False(t, b.Exhausted())
		b.Record()
		assert.False(t, b.Exhausted())
		b.Record()
		assert.True(t, b.Exhausted())
	})
}
