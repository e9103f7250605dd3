package report

import (
	"encoding/json"
	"testing"
)

func TestConfigJSONTriState(t *testing.T) {
	raw := `{"generalUsage":"g","cookie":null,"chip":{},"badge":{"status":true}}`
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Cookie.State() != SectionAbsent {
		t.Fatalf("null cookie should be absent")
	}
	if cfg.Chip.State() != SectionPresent {
		t.Fatalf("{} chip should be present")
	}
	if g, ok := cfg.Badge.Get(); !ok || !g.Status {
		t.Fatalf("badge = %+v %v", g, ok)
	}
	if cfg.Summary.IsPresent() {
		t.Fatalf("missing summary should be absent")
	}

	out, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Config
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if back.Cookie.IsPresent() || !back.Chip.IsPresent() || back.Summary.IsPresent() {
		t.Fatalf("states not preserved: %s", out)
	}
}

func TestConfigYAMLTriState(t *testing.T) {
	cfg, err := ParseConfigYAML([]byte("generalUsage: g\ncookie:\nchip: {}\nsummary:\n  summary: true\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Cookie.IsPresent() || !cfg.Chip.IsPresent() || cfg.Badge.IsPresent() {
		t.Fatalf("states: cookie=%v chip=%v badge=%v", cfg.Cookie.State(), cfg.Chip.State(), cfg.Badge.State())
	}
	if g, _ := cfg.Summary.Get(); !g.Summary || g.ParentComment {
		t.Fatalf("summary = %+v", g)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GeneralUsage != "학생 개인 성장 기록 조회" {
		t.Fatalf("generalUsage = %q", cfg.GeneralUsage)
	}
	cookie, ok := cfg.Cookie.Get()
	if !ok || !cookie.Asset || !cookie.Review {
		t.Fatalf("cookie = %+v", cookie)
	}
	if seg := Split(cookie.Usage, "획득", "사용"); seg.Primary == NoContent || seg.Secondary == NoContent {
		t.Fatalf("default cookie usage does not split: %+v", seg)
	}
	if !cfg.Chip.IsPresent() || !cfg.Badge.IsPresent() || !cfg.Summary.IsPresent() {
		t.Fatalf("all default groups should be present")
	}
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	if _, err := LoadDefaults("/nonexistent/defaults.yaml"); err == nil {
		t.Fatalf("expected error")
	}
	if cfg, err := LoadDefaults(""); err != nil || cfg.GeneralUsage == "" {
		t.Fatalf("embedded defaults: %v", err)
	}
}

func TestDescribeConfig(t *testing.T) {
	cfg := Config{
		GeneralUsage: "g",
		Cookie:       Present(AssetGroup{Usage: "x", Review: true}),
		Chip:         Present(AssetGroup{}),
		Summary:      Present(SummaryGroup{ParentComment: true}),
	}
	got := DescribeConfig(cfg)
	want := []string{"✓ 활용 방안 설정됨", "🍪 쿠키: 획득/사용, 돌아보기", "📊 총평: 격려의 한 마디"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	if got := DescribeConfig(Config{}); len(got) != 1 || got[0] != "설정이 저장되었습니다" {
		t.Fatalf("empty = %v", got)
	}
}
