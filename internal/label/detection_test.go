package label

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormat(t *testing.T) {
	l := Line{Polygon: PolygonFromBox(10, 10, 5, 5), Text: "OK"}
	assert.Equal(t, "10,10,15,10,15,15,10,15,OK", l.Format())
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Line
		wantErr bool
	}{
		{
			name:  "simple",
			input: "1,2,3,4,5,6,7,8,hello",
			want:  Line{Polygon: Polygon{1, 2, 3, 4, 5, 6, 7, 8}, Text: "hello"},
		},
		{
			name:  "transcription with commas",
			input: "1,2,3,4,5,6,7,8,a,b,,c",
			want:  Line{Polygon: Polygon{1, 2, 3, 4, 5, 6, 7, 8}, Text: "a,b,,c"},
		},
		{
			name:  "trailing newline and spaces",
			input: " 0, 0,10,0,10,10,0,10, word \r\n",
			want:  Line{Polygon: Polygon{0, 0, 10, 0, 10, 10, 0, 10}, Text: "word"},
		},
		{
			name:  "negative coordinates",
			input: "-5,-5,3,-5,3,3,-5,3,x",
			want:  Line{Polygon: Polygon{-5, -5, 3, -5, 3, 3, -5, 3}, Text: "x"},
		},
		{
			name:  "empty transcription",
			input: "1,2,3,4,5,6,7,8,",
			want:  Line{Polygon: Polygon{1, 2, 3, 4, 5, 6, 7, 8}},
		},
		{name: "too few fields", input: "1,2,3,4,5,6,7,8", wantErr: true},
		{name: "non integer", input: "1,2,3.5,4,5,6,7,8,x", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineIgnored(t *testing.T) {
	assert.True(t, Line{Text: Sentinel}.Ignored())
	assert.False(t, Line{Text: "## #"}.Ignored())
}

func TestWriteReadDetectionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.txt")
	lines := []Line{
		{Polygon: PolygonFromBox(10, 10, 5, 5), Text: "OK"},
		{Polygon: PolygonFromBox(0, 0, 20, 8), Text: Sentinel},
		{Polygon: Polygon{1, 1, 9, 2, 9, 9, 1, 8}, Text: "1,000"},
	}
	require.NoError(t, WriteDetectionFile(path, lines))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "10,10,15,10,15,15,10,15,OK\n0,0,20,0,20,8,0,8,###\n1,1,9,2,9,9,1,8,1,000", string(raw))

	got, err := ReadDetectionFile(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, l := range got {
		assert.Equal(t, i, l.Index)
		assert.Equal(t, lines[i], l.Line)
	}
}

func TestReadDetectionFileSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.txt")
	content := "garbage\n1,2,3,4,5,6,7,8,keep\na,b,c,d,e,f,g,h,bad\n\n0,0,4,0,4,4,0,4,last"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := ReadDetectionFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "keep", got[0].Text)
	assert.Equal(t, 4, got[1].Index)
	assert.Equal(t, "last", got[1].Text)

	polys, err := ReadPolygons(path)
	require.NoError(t, err)
	assert.Equal(t, []Polygon{{1, 2, 3, 4, 5, 6, 7, 8}, {0, 0, 4, 0, 4, 4, 0, 4}}, polys)
}

func TestReadDetectionFileMissing(t *testing.T) {
	_, err := ReadDetectionFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPolygonBoundsAndArea(t *testing.T) {
	p := Polygon{12, 3, 2, 5, 7, 20, 4, 1}
	b := p.Bounds()
	assert.Equal(t, 2, b.Min.X)
	assert.Equal(t, 1, b.Min.Y)
	assert.Equal(t, 12, b.Max.X)
	assert.Equal(t, 20, b.Max.Y)
	assert.Equal(t, 190, p.Area())

	pts := PolygonFromBox(1, 2, 3, 4).Points()
	assert.Equal(t, 4, pts[1].X)
	assert.Equal(t, 6, pts[2].Y)
}
