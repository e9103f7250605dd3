package document

import "github.com/mind-engage/growthreport/internal/report"

// Assemble renders every configured section of r in the fixed order header,
// cookie, chip, badge, summary, footer. Left-out sections are dropped.
func Assemble(r *report.Report, batch bool) Document {
	cfg := r.Config
	parts := []Fragment{
		RenderHeader(r.StudentName, cfg.GeneralUsage, batch),
		RenderCookie(cfg.Cookie, r.StudentName, r.CookieIncome, r.CookieUsed, r.CookieBalance(), r.SavingPercent, r.UsagePercent, r.Inputs),
		RenderChip(cfg.Chip, r.StudentName, r.ChocoChips, r.Inputs),
		RenderBadge(cfg.Badge, r.StudentName, r.Badges, r.Inputs),
		RenderSummary(cfg.Summary, r.Summary, r.PraiseAndResolve, r.Inputs),
		RenderFooter(r.DisplayDate()),
	}
	doc := Document{StudentCode: r.StudentCode, StudentName: r.StudentName}
	for _, f := range parts {
		if !f.IsEmpty() {
			doc.Fragments = append(doc.Fragments, f)
		}
	}
	return doc
}

// ErrorDocument is the inline block shown in place of a student whose data
// could not be loaded.
func ErrorDocument(code, message string) Document {
	return Document{
		StudentCode: code,
		Fragments: []Fragment{{
			Kind: KindError,
			Columns: []Column{{Blocks: []Block{ErrorNote{
				Title:   "⚠️ 오류: 학생 코드 " + code,
				Message: message,
			}}}},
		}},
	}
}
