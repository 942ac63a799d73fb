// Package stream turns collected submissions into dated livestream records.
package stream

import "strings"

// Filter selects livestream recordings by two required, case-sensitive
// substrings of the title.
type Filter struct {
	Marker  string
	Keyword string
}

// Match reports whether title contains both the marker and the keyword.
func (f Filter) Match(title string) bool {
	return strings.Contains(title, f.Marker) && strings.Contains(title, f.Keyword)
}
