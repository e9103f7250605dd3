package export

import (
	"strings"
	"time"
	"unicode"
)

// Filename is "<name>_report_<YYYY-MM-DD>.pdf", falling back to the student
// code when the name is blank. Callers pass a blank name for students who
// only have the placeholder name. Path separators and control characters are
// replaced with '_'.
func Filename(studentName, studentCode string, at time.Time) string {
	base := strings.TrimSpace(studentName)
	if base == "" {
		base = strings.TrimSpace(studentCode)
	}
	base = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." {
		base = "student"
	}
	return base + "_report_" + at.Format("2006-01-02") + ".pdf"
}

// ParseCodes splits a comma separated list, dropping blanks.
func ParseCodes(s string) []string {
	out := []string{}
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
