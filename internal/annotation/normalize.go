package annotation

import (
	"encoding/json"
	"strings"

	"github.com/MeKo-Tech/pplabel/internal/label"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinArea is the smallest bounding-box area, in px², kept by default.
const DefaultMinArea = 4

// Annotation is one text region of the document.
type Annotation struct {
	ImageID  ID
	Geometry Geometry

	UTF8String string
	Text       string
	Caption    string
}

type rawAnnotation struct {
	ImageID      ID              `json:"image_id"`
	Segmentation json.RawMessage `json:"segmentation"`
	Polygon      json.RawMessage `json:"polygon"`
	BBox         json.RawMessage `json:"bbox"`
	UTF8String   textField       `json:"utf8_string"`
	Text         textField       `json:"text"`
	Caption      textField       `json:"caption"`
}

// UnmarshalJSON resolves the geometry variant once at decode time.
func (a *Annotation) UnmarshalJSON(b []byte) error {
	var raw rawAnnotation
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*a = Annotation{
		ImageID:    raw.ImageID,
		Geometry:   resolveGeometry(raw.Segmentation, raw.Polygon, raw.BBox),
		UTF8String: string(raw.UTF8String),
		Text:       string(raw.Text),
		Caption:    string(raw.Caption),
	}
	return nil
}

// textField decodes a string; any other JSON value is treated as absent.
type textField string

func (t *textField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = ""
		return nil
	}
	*t = textField(s)
	return nil
}

// Transcription returns the first non-blank of utf8_string, text and
// caption with line breaks replaced by spaces.
func (a Annotation) Transcription() (string, bool) {
	for _, candidate := range []string{a.UTF8String, a.Text, a.Caption} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		s := strings.NewReplacer("\n", " ", "\r", " ").Replace(candidate)
		return strings.TrimSpace(s), true
	}
	return "", false
}

// Reason explains the outcome of normalizing one annotation.
type Reason int

const (
	ReasonKept Reason = iota
	ReasonNoText
	ReasonNoGeometry
	ReasonTooSmall
)

func (r Reason) String() string {
	switch r {
	case ReasonKept:
		return "kept"
	case ReasonNoText:
		return "no_text"
	case ReasonNoGeometry:
		return "no_geometry"
	case ReasonTooSmall:
		return "too_small"
	default:
		return "unknown"
	}
}

// Normalizer turns annotations into detection label lines.
type Normalizer struct {
	// MinArea discards polygons whose bounding box is smaller than this.
	MinArea int
	// UnicodeForm is one of "", "none", "NFC", "NFKC", "NFD", "NFKD".
	UnicodeForm string
}

// DefaultNormalizer returns a normalizer with the default minimum area and
// no Unicode normalization.
func DefaultNormalizer() Normalizer {
	return Normalizer{MinArea: DefaultMinArea}
}

// Normalize converts a to a label line, or reports why it was discarded.
func (n Normalizer) Normalize(a Annotation) (label.Line, Reason) {
	text, ok := a.Transcription()
	if !ok {
		return label.Line{}, ReasonNoText
	}
	poly, ok := a.Geometry.Polygon()
	if !ok {
		return label.Line{}, ReasonNoGeometry
	}
	if poly.Area() < n.MinArea {
		return label.Line{}, ReasonTooSmall
	}
	// Compatibility forms can expand to leading or trailing spaces.
	text = strings.TrimSpace(applyUnicodeForm(text, n.UnicodeForm))
	return label.Line{Polygon: poly, Text: text}, ReasonKept
}

func applyUnicodeForm(s, form string) string {
	switch strings.ToUpper(form) {
	case "NFC":
		return norm.NFC.String(s)
	case "NFKC":
		return norm.NFKC.String(s)
	case "NFD":
		return norm.NFD.String(s)
	case "NFKD":
		return norm.NFKD.String(s)
	}
	return s
}
