// Package label implements the PP-OCR label formats: per-image detection
// label files and the tab-separated recognition label file.
package label

import "image"

// Polygon is a quadrilateral stored as x1,y1,x2,y2,x3,y3,x4,y4.
type Polygon [8]int

// PolygonFromBox expands an axis-aligned box into its four corners,
// clockwise from the top-left.
func PolygonFromBox(x, y, w, h int) Polygon {
	return Polygon{x, y, x + w, y, x + w, y + h, x, y + h}
}

// Points returns the four corners.
func (p Polygon) Points() [4]image.Point {
	var pts [4]image.Point
	for i := range pts {
		pts[i] = image.Pt(p[2*i], p[2*i+1])
	}
	return pts
}

// Bounds returns the axis-aligned bounding rectangle of the polygon.
// The rectangle is built directly from the min/max coordinates and is not
// canonicalized, so Max is always >= Min.
func (p Polygon) Bounds() image.Rectangle {
	minX, maxX := p[0], p[0]
	minY, maxY := p[1], p[1]
	for i := 2; i < len(p); i += 2 {
		minX = min(minX, p[i])
		maxX = max(maxX, p[i])
		minY = min(minY, p[i+1])
		maxY = max(maxY, p[i+1])
	}
	return image.Rectangle{Min: image.Pt(minX, minY), Max: image.Pt(maxX, maxY)}
}

// Area returns the area of the bounding rectangle.
func (p Polygon) Area() int {
	b := p.Bounds()
	return b.Dx() * b.Dy()
}
