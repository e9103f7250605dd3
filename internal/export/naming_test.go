package export

import (
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	at := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	cases := map[string][2]string{
		"하늘_report_2025-03-04.pdf":      {"하늘", "ABCD1"},
		"ABCD1_report_2025-03-04.pdf":   {"  ", "ABCD1"},
		"a_b_c_report_2025-03-04.pdf":   {"a/b\\c", "ABCD1"},
		"x_y_report_2025-03-04.pdf":     {"x\ny", "ABCD1"},
		"student_report_2025-03-04.pdf": {"..", ""},
	}
	for want, in := range cases {
		if got := Filename(in[0], in[1], at); got != want {
			t.Fatalf("Filename(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestParseCodes(t *testing.T) {
	got := ParseCodes(" a, b,,c ,")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("ParseCodes = %v", got)
	}
	if len(ParseCodes("")) != 0 {
		t.Fatalf("empty input should give no codes")
	}
}
