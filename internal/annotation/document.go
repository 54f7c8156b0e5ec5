// Package annotation decodes COCO-style text annotation documents and
// normalizes each annotation into a detection label line.
package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

// ID is an opaque image identifier. Numbers are canonicalized so 7 and
// 7.0 compare equal; the string "7" is a different identifier.
type ID struct {
	Value   string
	Numeric bool
}

// NumericID returns the identifier of a JSON number.
func NumericID(v float64) ID {
	return ID{Value: strconv.FormatFloat(v, 'f', -1, 64), Numeric: true}
}

// StringID returns the identifier of a JSON string.
func StringID(s string) ID {
	return ID{Value: s}
}

func (id ID) String() string {
	if id.Numeric {
		return id.Value
	}
	return strconv.Quote(id.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = ID{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid image id %s", b)
	}
	*id = NumericID(f)
	return nil
}

// Image is one entry of the document's image table. Width and height in
// the document are ignored; the cropper reads them from the image file.
type Image struct {
	ID       ID     `json:"id"`
	FileName string `json:"file_name"`
}

// Stem returns the base file name without its extension.
func (img Image) Stem() string {
	base := path.Base(strings.ReplaceAll(img.FileName, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Document is a decoded annotation file.
type Document struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
}

// Load reads and decodes the annotation document at p.
func Load(p string) (*Document, error) {
	f, err := os.Open(p) //nolint:gosec // G304: annotation path is user-provided
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer func() { _ = f.Close() }()

	var doc Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode annotations %s: %w", p, err)
	}
	return &doc, nil
}

// ByImage groups annotations by image identifier, keeping file order
// within each group.
func (d *Document) ByImage() map[ID][]Annotation {
	groups := make(map[ID][]Annotation)
	for _, a := range d.Annotations {
		groups[a.ImageID] = append(groups[a.ImageID], a)
	}
	return groups
}
