package document

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

const pageCSS = `
body { font-family: 'Noto Sans KR', sans-serif; color: #333; margin: 0; }
.report-page { max-width: 190mm; margin: 0 auto; padding: 10mm 0; }
.report-page h1 { text-align: center; font-size: 2.1em; margin: 20px 0; }
.usage-section, .summary-section, .asset-section-container { border: 1px solid #e5e7eb; border-radius: 12px; padding: 14px; margin-bottom: 14px; }
.dynamic-column-layout { display: flex; gap: 14px; flex-wrap: wrap; }
.report-column { flex: 1 1 30%; }
.column-title { font-weight: bold; margin-bottom: 8px; }
.usage-content-block p { margin: 0 0 5px; font-size: 0.9em; line-height: 1.4; }
.pie-chart { position: relative; width: 120px; height: 120px; border-radius: 50%; margin: 0 auto; }
.pie-chart .pie-label { position: absolute; top: 50%; left: 50%; transform: translate(-50%, -50%); font-weight: bold; text-align: center; }
.cookie-asset-item { display: flex; justify-content: space-between; font-size: 0.9em; }
.balance-figure { color: #d35400; font-size: 2.5em; text-align: center; margin: 20px 0; }
.all-badges-container { display: flex; flex-wrap: wrap; gap: 8px; }
.badge-item-display { display: flex; flex-direction: column; align-items: center; width: 64px; font-size: 0.8em; }
.badge-item-display img { width: 48px; height: 48px; }
.student-review-area textarea, .summary-textarea { width: 100%; min-height: 60px; }
.notice { text-align: center; font-size: 0.9em; color: #777; }
.report-footer { text-align: right; font-size: 0.9em; color: #666; }
.report-error-block { border: 1px solid #e74c3c; background: #fdecea; border-radius: 12px; padding: 14px; margin-bottom: 14px; }
@media print { [data-page-break-after="true"] { page-break-after: always; } }
`

const templates = `
{{define "page"}}<!DOCTYPE html>
<html lang="ko"><head><meta charset="utf-8"><title>{{.Title}}</title><style>{{.CSS}}</style></head>
<body>{{range .Docs}}{{template "doc" .}}{{end}}</body></html>
{{end}}

{{define "doc"}}{{if .IsError}}{{range .Fragments}}{{template "fragment" .}}{{end}}{{else}}<div class="report-page" data-student="{{.StudentCode}}" style="page-break-after: {{if documentBreak .}}always{{else}}auto{{end}};">
{{range .Fragments}}{{template "fragment" .}}{{end}}</div>
{{end}}{{end}}

{{define "fragment"}}{{if eq .Kind "header"}}<h1>{{.Title}}</h1>
{{range .Columns}}<div class="usage-section"><h2>{{.Title}}</h2>{{range .Blocks}}{{template "block" .}}{{end}}</div>
{{end}}{{else if eq .Kind "footer"}}<div class="report-footer">{{range .Columns}}{{range .Blocks}}{{template "block" .}}{{end}}{{end}}</div>
{{else if eq .Kind "error"}}<div class="report-error-block">{{range .Columns}}{{range .Blocks}}{{template "block" .}}{{end}}{{end}}</div>
{{else if eq .Kind "summary"}}<div class="summary-section"><h2>{{.Title}}</h2>
{{range .Columns}}<h3>{{.Title}}</h3>{{range .Blocks}}{{template "block" .}}{{end}}
{{end}}</div>
{{else}}<div class="asset-section-container section-{{.Kind}}"{{if .ForcedBreakAfter}} data-page-break-after="true"{{end}}>
<h2 class="activity-title">{{.Title}}</h2><div class="dynamic-column-layout">
{{range .Columns}}<div class="report-column"><div class="column-title">{{.Title}}</div>{{range .Blocks}}{{template "block" .}}{{end}}</div>
{{end}}</div></div>
{{end}}{{end}}

{{define "block"}}{{$k := blockKind .}}{{if eq $k "text"}}<div class="text-block" style="white-space: pre-wrap;">{{.Body}}</div>
{{else if eq $k "labeled"}}<div class="usage-content-block"><p style="{{labelStyle .Color}}">{{.Label}}</p><p style="white-space: pre-wrap;">{{.Body}}</p></div>
{{else if eq $k "cookieAssets"}}<div class="center-asset-content"><div class="pie-chart" style="{{pieStyle .SavingPercent}}"><div class="pie-label">{{pct .SavingPercent}}%<div>(저축)</div></div></div>
<div class="cookie-asset-info"><div class="cookie-asset-item"><span>총 획득 (수입)</span> <span>{{.Income}}개</span></div><div class="cookie-asset-item"><span>총 사용 (지출)</span> <span>{{.Used}}개</span></div><div class="cookie-asset-item"><span>남은 쿠키 (잔여)</span> <span>{{.Balance}}개</span></div></div></div>
{{else if eq $k "balance"}}<h3 class="balance-figure">{{.Amount}}{{.Unit}}</h3>
{{else if eq $k "badgeGrid"}}<div class="all-badges-container">{{range .Badges}}<div class="badge-item-display acquired"><img src="{{.ImageRef}}" alt="{{.Title}} 뱃지"><span>{{.Title}}</span></div>{{end}}</div>
{{else if eq $k "notice"}}<p class="notice">{{.Body}}</p>
{{else if eq $k "prompt"}}<div class="student-review-area">{{if .Label}}<label>{{.Label}}</label>{{end}}<textarea data-tag="{{.Tag}}"{{if .Rows}} rows="{{.Rows}}"{{end}} placeholder="{{.Placeholder}}">{{.Value}}</textarea></div>
{{else if eq $k "errorNote"}}<h2>{{.Title}}</h2><p>{{.Message}}</p>
{{end}}{{end}}
`

var tmpl = template.Must(template.New("document").Funcs(template.FuncMap{
	"blockKind":     blockKind,
	"documentBreak": documentBreak,
	"pct":           pct,
	"pieStyle":      pieStyle,
	"labelStyle":    labelStyle,
}).Parse(templates))

// HTML renders a single fragment. An empty fragment renders as "".
func HTML(f Fragment) (string, error) {
	if f.IsEmpty() {
		return "", nil
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "fragment", f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML renders docs back to back, without the surrounding page.
func WriteHTML(w io.Writer, docs ...Document) error {
	for _, d := range docs {
		if err := tmpl.ExecuteTemplate(w, "doc", d); err != nil {
			return err
		}
	}
	return nil
}

// WritePage renders a standalone HTML page with the report stylesheet.
func WritePage(w io.Writer, title string, docs ...Document) error {
	return tmpl.ExecuteTemplate(w, "page", struct {
		Title string
		CSS   template.CSS
		Docs  []Document
	}{title, template.CSS(pageCSS), docs})
}

func blockKind(b Block) string {
	switch b.(type) {
	case Text:
		return "text"
	case Labeled:
		return "labeled"
	case CookieAssets:
		return "cookieAssets"
	case Balance:
		return "balance"
	case BadgeGrid:
		return "badgeGrid"
	case Notice:
		return "notice"
	case Prompt:
		return "prompt"
	case ErrorNote:
		return "errorNote"
	}
	return ""
}

func documentBreak(d Document) bool {
	return len(d.Fragments) > 0 && d.Fragments[0].DocumentBreakAfter
}

// pct prints a percentage without trailing zeros (70, 66.7).
func pct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func pieStyle(saving float64) template.CSS {
	return template.CSS(fmt.Sprintf("background: conic-gradient(%s 0%% %s%%, %s %s%% 100%%);",
		ColorSave, pct(saving), ColorSpend, pct(saving)))
}

func labelStyle(color string) template.CSS {
	return template.CSS("font-weight: bold; color: " + color + ";")
}
