package report

import (
	"regexp"
	"strings"
)

// NoContent is shown for a segment the text does not provide.
const NoContent = "내용 없음"

// Segments is a usage text split on its two keyword labels.
type Segments struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Split extracts "<primary>: ..." (up to a line starting with "<secondary>:")
// and "<secondary>: ..." from text. Missing segments fall back to NoContent.
func Split(text, primaryLabel, secondaryLabel string) Segments {
	out := Segments{Primary: NoContent, Secondary: NoContent}
	if text == "" {
		return out
	}
	p := regexp.QuoteMeta(primaryLabel)
	s := regexp.QuoteMeta(secondaryLabel)

	primaryRe := regexp.MustCompile(`(?s)` + p + `:(.*?)(?:\n` + s + `:|$)`)
	secondaryRe := regexp.MustCompile(`(?s)` + s + `:(.*)`)

	if m := primaryRe.FindStringSubmatch(text); m != nil && m[1] != "" {
		out.Primary = orNoContent(m[1])
	} else if strings.HasPrefix(strings.TrimSpace(text), primaryLabel+":") {
		out.Primary = orNoContent(strings.Replace(text, primaryLabel+":", "", 1))
	}
	if m := secondaryRe.FindStringSubmatch(text); m != nil && m[1] != "" {
		out.Secondary = orNoContent(m[1])
	}
	return out
}

func orNoContent(s string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return NoContent
}
