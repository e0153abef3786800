// Package apn canonicalizes assessor's parcel numbers for matching.
package apn

import "strings"

// Normalize reduces a raw parcel identifier to its canonical match key:
// whitespace, hyphens, and periods removed, then lower-cased. Two raw
// identifiers name the same parcel iff their normalized keys are equal.
// The empty result is never a valid match key.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '-' || r == '.':
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
