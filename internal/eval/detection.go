// Package eval provides lightweight detection and recognition scoring.
package eval

import "github.com/MeKo-Tech/pplabel/internal/label"

// DefaultIoUThreshold is the overlap a prediction needs to match.
const DefaultIoUThreshold = 0.5

// IoUPoly approximates the overlap of two polygons by the Jaccard ratio of
// their axis-aligned bounding boxes. It is not a true polygon
// intersection; rotated or skewed quads score higher than their real
// overlap. Returns 0 when the union is empty.
func IoUPoly(a, b label.Polygon) float64 {
	ra, rb := a.Bounds(), b.Bounds()
	iw := max(0, min(ra.Max.X, rb.Max.X)-max(ra.Min.X, rb.Min.X))
	ih := max(0, min(ra.Max.Y, rb.Max.Y)-max(ra.Min.Y, rb.Min.Y))
	inter := iw * ih
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Counts holds matching outcomes.
type Counts struct {
	TP int `json:"tp" yaml:"tp"`
	FP int `json:"fp" yaml:"fp"`
	FN int `json:"fn" yaml:"fn"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{TP: c.TP + o.TP, FP: c.FP + o.FP, FN: c.FN + o.FN}
}

// Scores are precision, recall and their harmonic mean.
type Scores struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Scores derives precision, recall and F1. A zero denominator yields 0.
func (c Counts) Scores() Scores {
	var s Scores
	if c.TP+c.FP > 0 {
		s.Precision = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		s.Recall = float64(c.TP) / float64(c.TP+c.FN)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

// Match greedily pairs predictions with ground truth. Predictions are
// taken in order; each claims the unmatched ground-truth polygon with the
// highest IoU, the first one winning ties, if that IoU reaches threshold.
func Match(gt, pred []label.Polygon, threshold float64) Counts {
	matched := make([]bool, len(gt))
	tp := 0
	for _, p := range pred {
		best, bestIdx := 0.0, -1
		for j, g := range gt {
			if matched[j] {
				continue
			}
			if iou := IoUPoly(g, p); iou > best {
				best, bestIdx = iou, j
			}
		}
		if bestIdx >= 0 && best >= threshold {
			tp++
			matched[bestIdx] = true
		}
	}
	return Counts{TP: tp, FP: len(pred) - tp, FN: len(gt) - tp}
}

// DetectionFScore matches pred against gt and returns the scores.
func DetectionFScore(gt, pred []label.Polygon, threshold float64) Scores {
	return Match(gt, pred, threshold).Scores()
}
