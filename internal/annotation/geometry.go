package annotation

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/MeKo-Tech/pplabel/internal/label"
)

// GeometryKind tags which geometry field an annotation was resolved from.
type GeometryKind int

const (
	GeometryNone GeometryKind = iota
	GeometrySegmentation
	GeometryPolygon
	GeometryBox
)

func (k GeometryKind) String() string {
	switch k {
	case GeometrySegmentation:
		return "segmentation"
	case GeometryPolygon:
		return "polygon"
	case GeometryBox:
		return "bbox"
	default:
		return "none"
	}
}

// Geometry is the resolved geometry of an annotation. Coords holds the flat
// coordinate list for segmentation and polygon, or x,y,w,h for a box. A
// segmentation that is not a coordinate list (RLE masks) keeps its kind but
// has no coordinates.
type Geometry struct {
	Kind   GeometryKind
	Coords []float64
}

// Polygon converts the geometry to a label polygon. It reports false when
// fewer than 8 coordinates are available.
func (g Geometry) Polygon() (label.Polygon, bool) {
	switch g.Kind {
	case GeometrySegmentation, GeometryPolygon:
		return polygonFromCoords(g.Coords)
	case GeometryBox:
		return polygonFromBox(g.Coords)
	default:
		return label.Polygon{}, false
	}
}

func polygonFromCoords(coords []float64) (label.Polygon, bool) {
	var p label.Polygon
	if len(coords) < len(p) {
		return p, false
	}
	for i := range p {
		p[i] = roundCoord(coords[i])
	}
	return p, true
}

func polygonFromBox(coords []float64) (label.Polygon, bool) {
	if len(coords) < 4 {
		return label.Polygon{}, false
	}
	x, y, w, h := coords[0], coords[1], coords[2], coords[3]
	return polygonFromCoords([]float64{x, y, x + w, y, x + w, y + h, x, y + h})
}

// roundCoord rounds half to even, matching the rounding the existing
// training data was produced with.
func roundCoord(v float64) int {
	return int(math.RoundToEven(v))
}

// resolveGeometry picks the first non-empty field in the order
// segmentation, polygon, bbox.
func resolveGeometry(segmentation, polygon, bbox json.RawMessage) Geometry {
	switch {
	case !isEmptyValue(segmentation):
		return Geometry{Kind: GeometrySegmentation, Coords: firstCoordList(segmentation)}
	case !isEmptyValue(polygon):
		return Geometry{Kind: GeometryPolygon, Coords: firstCoordList(polygon)}
	case !isEmptyValue(bbox):
		var coords []float64
		if err := json.Unmarshal(bbox, &coords); err != nil {
			coords = nil
		}
		return Geometry{Kind: GeometryBox, Coords: coords}
	default:
		return Geometry{Kind: GeometryNone}
	}
}

// firstCoordList decodes a flat number list, or the first sub-list of a
// list of lists. Anything else yields nil.
func firstCoordList(raw json.RawMessage) []float64 {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil
	}
	target := raw
	if first := bytes.TrimSpace(items[0]); len(first) > 0 && first[0] == '[' {
		target = first
	}
	var coords []float64
	if err := json.Unmarshal(target, &coords); err != nil {
		return nil
	}
	return coords
}

// isEmptyValue reports whether a raw JSON value is absent or falsy.
func isEmptyValue(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "[]", "{}", `""`, "0", "false":
		return true
	}
	return false
}
