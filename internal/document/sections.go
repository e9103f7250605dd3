package document

import (
	"github.com/mind-engage/growthreport/internal/report"
)

const (
	ColorAcquire = "#2ecc71"
	ColorUse     = "#e74c3c"
	ColorIntro   = "#1e88e5"

	// Proportion indicator palette.
	ColorSave  = "#2ecc71"
	ColorSpend = "#e74c3c"

	NoBadgesYet = "아직 획득한 뱃지가 없습니다."
)

// RenderHeader opens a student's document with the title and the class-wide
// usage text. batch marks the document boundary for multi-student output.
func RenderHeader(student, generalUsage string, batch bool) Fragment {
	return Fragment{
		Kind:  KindHeader,
		Title: "✨ " + student + " 학생의 성장 기록 ✨",
		Columns: []Column{{
			Title:  "📌 우리 학급의 다했니 다했어요 활용 방안",
			Blocks: []Block{Text{Body: generalUsage}},
		}},
		DocumentBreakAfter: batch,
	}
}

// RenderCookie takes the balance from the caller so it is derived in one
// place (report.Report.CookieBalance).
func RenderCookie(cfg report.Section[report.AssetGroup], student string, income, used, balance int,
	savingPercent, usagePercent float64, inputs report.UserInputs) Fragment {
	g, ok := cfg.Get()
	if !ok {
		return Fragment{}
	}
	f := Fragment{Kind: KindCookie, Title: "🍪 " + student + " 학생의 쿠키 활동"}
	if g.Usage != "" {
		seg := report.Split(g.Usage, "획득", "사용")
		f.Columns = append(f.Columns, Column{
			Title: "🍪 우리 학급 쿠키 획득 및 사용",
			Blocks: []Block{
				Labeled{Label: "획득", Color: ColorAcquire, Body: seg.Primary},
				Labeled{Label: "사용", Color: ColorUse, Body: seg.Secondary},
			},
		})
	}
	if g.Asset {
		f.Columns = append(f.Columns, Column{
			Title: "💰 쿠키 자산 현황",
			Blocks: []Block{CookieAssets{
				SavingPercent: savingPercent,
				UsagePercent:  usagePercent,
				Income:        income,
				Used:          used,
				Balance:       balance,
			}},
		})
	}
	if g.Review {
		f.Columns = append(f.Columns, Column{
			Title: "🍪 나의 쿠키 활동 돌아보기",
			Blocks: []Block{
				Prompt{Tag: report.TagCookieMethod, Label: "1. 쿠키 획득 비법:", Value: inputs.Get(report.TagCookieMethod)},
				Prompt{Tag: report.TagCookieGood, Label: "2. 좋았던 점:", Value: inputs.Get(report.TagCookieGood)},
			},
		})
	}
	return f
}

func RenderChip(cfg report.Section[report.AssetGroup], student string, chips int, inputs report.UserInputs) Fragment {
	g, ok := cfg.Get()
	if !ok {
		return Fragment{}
	}
	f := Fragment{Kind: KindChip, Title: "🍫 " + student + " 학생의 초코칩 활동"}
	if g.Usage != "" {
		seg := report.Split(g.Usage, "획득", "사용")
		f.Columns = append(f.Columns, Column{
			Title: "🍫 우리 학급 초코칩 획득 및 사용",
			Blocks: []Block{
				Labeled{Label: "획득", Color: ColorAcquire, Body: seg.Primary},
				Labeled{Label: "사용", Color: ColorUse, Body: seg.Secondary},
			},
		})
	}
	if g.Asset {
		f.Columns = append(f.Columns, Column{
			Title:  "🍫 초코칩 자산 현황 (잔액)",
			Blocks: []Block{Balance{Amount: chips, Unit: "개"}},
		})
	}
	if g.Review {
		f.Columns = append(f.Columns, Column{
			Title: "🍫 나의 초코칩 활동 돌아보기",
			Blocks: []Block{
				Prompt{Tag: report.TagChipMethod, Label: "1. 초코칩 획득 비법:", Value: inputs.Get(report.TagChipMethod)},
				Prompt{Tag: report.TagChipGood, Label: "2. 좋았던 점:", Value: inputs.Get(report.TagChipGood)},
			},
		})
	}
	return f
}

// RenderBadge always carries the forced page break when present: cookie, chip
// and badge end page one, the summary starts page two.
func RenderBadge(cfg report.Section[report.BadgeGroup], student string, badges []report.Badge, inputs report.UserInputs) Fragment {
	g, ok := cfg.Get()
	if !ok {
		return Fragment{}
	}
	f := Fragment{Kind: KindBadge, Title: "🏅 " + student + " 학생의 뱃지 활동", ForcedBreakAfter: true}
	if g.Usage != "" {
		seg := report.Split(g.Usage, "소개", "획득")
		f.Columns = append(f.Columns, Column{
			Title: "🏅 우리 학급 뱃지 소개 및 획득",
			Blocks: []Block{
				Labeled{Label: "소개", Color: ColorIntro, Body: seg.Primary},
				Labeled{Label: "획득", Color: ColorAcquire, Body: seg.Secondary},
			},
		})
	}
	if g.Status {
		var status Block = Notice{Body: NoBadgesYet}
		if len(badges) > 0 {
			grid := BadgeGrid{Badges: make([]BadgeItem, len(badges))}
			for i, b := range badges {
				grid.Badges[i] = BadgeItem{Title: b.Title, ImageRef: b.ImageRef}
			}
			status = grid
		}
		f.Columns = append(f.Columns,
			Column{Title: "🏅 학생의 뱃지 획득 현황", Blocks: []Block{status}},
			Column{
				Title: "🏅 나의 뱃지 활동 돌아보기",
				Blocks: []Block{
					Prompt{Tag: report.TagProudBadge, Label: "1. 가장 자랑스러운 뱃지와 그 이유:",
						Placeholder: "가장 자랑스러운 뱃지와 그 이유를 적어주세요", Value: inputs.Get(report.TagProudBadge)},
					Prompt{Tag: report.TagWantBadge, Label: "2. 내가 받고 싶은 뱃지 추천:",
						Placeholder: "받고 싶은 뱃지를 추천해주세요", Value: inputs.Get(report.TagWantBadge)},
				},
			})
	}
	return f
}

func RenderSummary(cfg report.Section[report.SummaryGroup], summary, praise string, inputs report.UserInputs) Fragment {
	g, ok := cfg.Get()
	if !ok {
		return Fragment{}
	}
	f := Fragment{Kind: KindSummary, Title: "📊 총평"}
	if g.Summary {
		f.Columns = append(f.Columns, Column{Title: "1. 활동 요약", Blocks: []Block{Text{Body: summary}}})
	}
	if g.PraiseAndResolve {
		f.Columns = append(f.Columns, Column{Title: "2. 칭찬과 다짐", Blocks: []Block{Prompt{
			Tag:         report.TagPraiseResolve,
			Placeholder: "학생 입력 : 스스로 잘한 부분을 칭찬하고 앞으로의 다짐을 적어봅시다.",
			Value:       praise,
			Rows:        4,
		}}})
	}
	if g.ParentComment {
		f.Columns = append(f.Columns, Column{Title: "3. 격려의 한 마디", Blocks: []Block{Prompt{
			Tag:         report.TagParentComment,
			Placeholder: "학부모 입력 : 자녀를 위한 격려의 한 마디를 남겨주세요.",
			Value:       inputs.Get(report.TagParentComment),
			Rows:        4,
		}}})
	}
	return f
}

func RenderFooter(date string) Fragment {
	return Fragment{
		Kind:    KindFooter,
		Columns: []Column{{Blocks: []Block{Notice{Body: "조회 일시: " + date}}}},
	}
}
