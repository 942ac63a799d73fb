// Package sanitize strips the invisible and decorative unicode that uploaders
// sprinkle into video titles.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	generalPunctuation = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x2000, Hi: 0x206F, Stride: 1}}}
	mathOperators      = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x2200, Hi: 0x22FF, Stride: 1}}}
	combiningMarks     = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}}}
	latin1High         = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0080, Hi: 0x00FF, Stride: 1}}, LatinOffset: 1}
)

// newChain builds the ordered rune pipeline. Transformers carry state, so a
// fresh chain is built per call.
func newChain() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.Predicate(func(r rune) bool { return r == '\u200B' })),
		runes.Map(func(r rune) rune {
			if r == '\u00A0' {
				return ' '
			}

			return r
		}),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == '\uFF61' || r == '\u2022' })),
		runes.Map(func(r rune) rune {
			if r == '\t' || r == '\r' {
				return ' '
			}

			return r
		}),
		runes.Remove(runes.In(generalPunctuation)),
		runes.Remove(runes.In(mathOperators)),
		runes.Remove(runes.In(combiningMarks)),
		runes.Remove(runes.In(latin1High)),
	)
}

// Sanitize removes zero-width spaces, halfwidth full stops, bullets and the
// General Punctuation, Mathematical Operators, Combining Diacritical Marks and
// Latin-1 high blocks, maps nbsp, tab and CR to spaces, then collapses
// whitespace runs. Leading and trailing space is kept.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	out, _, err := transform.String(newChain(), text)
	if err != nil {
		// Only reachable on invalid UTF-8; fall back to the repaired input.
		out = strings.ToValidUTF8(text, "")
	}

	return collapseSpaces(out)
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inSpace := false

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}

			inSpace = true

			continue
		}

		inSpace = false

		b.WriteRune(r)
	}

	return b.String()
}
