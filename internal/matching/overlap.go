// internal/matching/overlap.go
package matching

import "strings"

// normalizeTerm trims whitespace and case-folds a term for comparison.
func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// skillsOverlap reports whether two skill/category terms match under the
// fuzzy containment rule: after trimming and case-folding they are equal or
// one contains the other. This deliberately lets "Web Development" satisfy a
// "Development" requirement. Isolated here so the matching rule can be
// tightened or loosened without touching the scorers.
func skillsOverlap(a, b string) bool {
	na, nb := normalizeTerm(a), normalizeTerm(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// termsEqual reports trimmed, case-folded equality (no containment).
func termsEqual(a, b string) bool {
	na, nb := normalizeTerm(a), normalizeTerm(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// cleanTerms trims every term and drops empties, preserving order.
func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
