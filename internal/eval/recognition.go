package eval

import "github.com/pmezard/go-difflib/difflib"

// NormalizedEditDistance returns 1 minus the longest-matching-blocks
// similarity ratio of gt and pred, compared rune by rune. The result is in
// [0, 1]; 0 means identical.
func NormalizedEditDistance(gt, pred string) float64 {
	m := difflib.NewMatcher(runeStrings(gt), runeStrings(pred))
	return 1 - m.Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
