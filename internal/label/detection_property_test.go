package label

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genPolygon generates a polygon with coordinates in a typical image range.
func genPolygon() gopter.Gen {
	return gen.SliceOfN(8, gen.IntRange(-50, 5000)).Map(func(vals []int) Polygon {
		var p Polygon
		copy(p[:], vals)
		return p
	})
}

// genTranscription generates single-line, trimmed text that may contain commas.
func genTranscription() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf("a", "Z", "9", ",", " ", "#", "ü", "漢", "-"), reflect.TypeOf("")).Map(func(parts []string) string {
		return strings.TrimSpace(strings.Join(parts, ""))
	})
}

// TestLine_RoundTrip verifies every formatted line parses back unchanged.
func TestLine_RoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ParseLine(Format(l)) == l", prop.ForAll(
		func(p Polygon, text string) bool {
			l := Line{Polygon: p, Text: text}
			got, err := ParseLine(l.Format())
			return err == nil && got == l
		},
		genPolygon(),
		genTranscription(),
	))

	properties.TestingRun(t)
}

// TestPolygonFromBox_Corners verifies box expansion is exact.
func TestPolygonFromBox_Corners(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("box expands to its four corners", prop.ForAll(
		func(x, y, w, h int) bool {
			return PolygonFromBox(x, y, w, h) == Polygon{x, y, x + w, y, x + w, y + h, x, y + h}
		},
		gen.IntRange(0, 4000),
		gen.IntRange(0, 4000),
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
	))

	properties.Property("area of a box polygon is w*h", prop.ForAll(
		func(x, y, w, h int) bool {
			return PolygonFromBox(x, y, w, h).Area() == w*h
		},
		gen.IntRange(0, 4000),
		gen.IntRange(0, 4000),
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}
