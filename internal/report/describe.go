package report

import "strings"

// DescribeConfig lists the enabled items of cfg, one line per section, for
// the confirmation shown after a teacher saves a configuration.
func DescribeConfig(cfg Config) []string {
	var out []string
	if strings.TrimSpace(cfg.GeneralUsage) != "" {
		out = append(out, "✓ 활용 방안 설정됨")
	}
	if g, ok := cfg.Cookie.Get(); ok {
		out = appendItems(out, "🍪 쿠키", assetItems(g))
	}
	if g, ok := cfg.Chip.Get(); ok {
		out = appendItems(out, "🍫 초코칩", assetItems(g))
	}
	if g, ok := cfg.Badge.Get(); ok {
		var items []string
		if g.Usage != "" {
			items = append(items, "소개/획득")
		}
		if g.Status {
			items = append(items, "획득 현황")
		}
		out = appendItems(out, "🏅 뱃지", items)
	}
	if g, ok := cfg.Summary.Get(); ok {
		var items []string
		if g.Summary {
			items = append(items, "활동 요약")
		}
		if g.PraiseAndResolve {
			items = append(items, "칭찬과 다짐")
		}
		if g.ParentComment {
			items = append(items, "격려의 한 마디")
		}
		out = appendItems(out, "📊 총평", items)
	}
	if len(out) == 0 {
		return []string{"설정이 저장되었습니다"}
	}
	return out
}

func assetItems(g AssetGroup) []string {
	var items []string
	if g.Usage != "" {
		items = append(items, "획득/사용")
	}
	if g.Asset {
		items = append(items, "자산 현황")
	}
	if g.Review {
		items = append(items, "돌아보기")
	}
	return items
}

func appendItems(out []string, label string, items []string) []string {
	if len(items) == 0 {
		return out
	}
	return append(out, label+": "+strings.Join(items, ", "))
}
