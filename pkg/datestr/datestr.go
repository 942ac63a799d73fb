// Package datestr extracts broadcast dates embedded in free-form video titles.
package datestr

import (
	"regexp"
	"strings"
)

// Layout is the format of every date returned by Extract.
const Layout = "2006-01-02"

var (
	// markedDate matches dates written with the 年/月/日 markers, e.g. 19年3月5日.
	markedDate = regexp.MustCompile(`(\d{1,4})年(\d{1,2})月(\d{1,2})日`)
	// compactDate matches a bare YYMMDD run.
	compactDate = regexp.MustCompile(`\d{6}`)
)

// Extract returns the first date found in text as YYYY-MM-DD, or "" when text
// carries no recognisable date.
//
// Marker dates win over compact ones. Digits are passed through without any
// calendar validation, so "191305" yields "2019-13-05".
func Extract(text string) string {
	if m := markedDate.FindStringSubmatch(text); m != nil {
		return join(expandYear(m[1]), zeroPad(m[2]), zeroPad(m[3]))
	}

	if m := compactDate.FindString(text); m != "" {
		return join("20"+m[:2], m[2:4], m[4:6])
	}

	return ""
}

func expandYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}

	return y
}

func zeroPad(field string) string {
	if len(field) == 1 {
		return "0" + field
	}

	return field
}

func join(y, m, d string) string {
	return strings.Join([]string{y, m, d}, "-")
}
