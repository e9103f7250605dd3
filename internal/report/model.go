package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/rewards"
)

// Review tags key the free-text answers a student submits back.
const (
	TagCookieMethod  = "cookieMethod"
	TagCookieGood    = "cookieGood"
	TagChipMethod    = "chipMethod"
	TagChipGood      = "chipGood"
	TagProudBadge    = "proudBadge"
	TagWantBadge     = "wantBadge"
	TagPraiseResolve = "praiseResolve"
	TagParentComment = "parentComment"
)

const (
	DefaultStudentName = "학생"
	NoBadgesPhrase     = "획득한 뱃지 없음"
	PraisePlaceholder  = "[교사 참고] 이 자리에 선생님이 대신 칭찬과 격려의 메시지를 적거나, 학생이 직접 잘한 점과 다짐을 적을 수 있도록 안내해주세요."
)

// UserInputs holds previously submitted student text keyed by review tag.
type UserInputs map[string]string

// Get returns the trimmed value for tag; a nil map is empty.
func (u UserInputs) Get(tag string) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u[tag])
}

// Report is the canonical, immutable view of one student's report.
type Report struct {
	StudentName      string     `json:"student"`
	GeneratedAt      time.Time  `json:"reportDate"`
	Config           Config     `json:"config"`
	Badges           []Badge    `json:"allAcquiredBadges"`
	StudentCode      string     `json:"studentCode"`
	CookieIncome     int        `json:"totalCookieIncome"`
	CookieUsed       int        `json:"totalCookieUsed"`
	ChocoChips       int        `json:"currentChocoChips"`
	UsagePercent     float64    `json:"cookieUsageRatio"`
	SavingPercent    float64    `json:"cookieSavingRatio"`
	Summary          string     `json:"autoSummary"`
	PraiseAndResolve string     `json:"praiseAndResolve"`
	Inputs           UserInputs `json:"userInputs,omitempty"`
}

// CookieBalance is income minus used. It is derived here and nowhere else.
func (r *Report) CookieBalance() int { return r.CookieIncome - r.CookieUsed }

// DisplayDate formats GeneratedAt the way the report prints it.
func (r *Report) DisplayDate() string {
	return r.GeneratedAt.Format("2006년 1월 2일 15:04")
}

// Builder turns snapshots into Reports. The badge archive is shared across
// calls so earned badges accumulate.
type Builder struct {
	archive *BadgeArchive
	now     func() time.Time
}

type BuilderOption func(*Builder)

func WithClock(now func() time.Time) BuilderOption { return func(b *Builder) { b.now = now } }

func NewBuilder(archive *BadgeArchive, opts ...BuilderOption) *Builder {
	if archive == nil {
		archive = NewBadgeArchive()
	}
	b := &Builder{archive: archive, now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build returns a *apperr.DataUnavailable when res carries an error; the
// archive is not touched in that case.
func (b *Builder) Build(studentCode string, res rewards.Result, cfg Config, inputs UserInputs) (*Report, error) {
	if res.Error != "" || res.Snapshot == nil {
		msg := res.Error
		if msg == "" {
			msg = "no data"
		}
		return nil, &apperr.DataUnavailable{StudentCode: studentCode, Message: msg}
	}
	snap := res.Snapshot

	name := strings.TrimSpace(snap.Name)
	if name == "" {
		name = DefaultStudentName
	}
	ratio := CalculateRatio(float64(snap.Cookie), float64(snap.UsedCookie))
	badges := b.archive.ArchiveAndRetrieve(studentCode, snap.Badges)

	r := &Report{
		StudentName:   name,
		GeneratedAt:   b.now(),
		Config:        cfg,
		Badges:        badges,
		StudentCode:   studentCode,
		CookieIncome:  snap.Cookie,
		CookieUsed:    snap.UsedCookie,
		ChocoChips:    snap.ChocoChips,
		UsagePercent:  ratio.UsagePercent,
		SavingPercent: ratio.SavingPercent,
		Inputs:        copyInputs(inputs),
	}
	r.Summary = SummaryText(name, r.CookieIncome, r.ChocoChips, badges)
	r.PraiseAndResolve = PraisePlaceholder
	if v := inputs.Get(TagPraiseResolve); v != "" {
		r.PraiseAndResolve = v
	}
	return r, nil
}

// WithInputs returns a copy of r carrying inputs, for re-rendering a stored
// submission without refetching.
func (r *Report) WithInputs(inputs UserInputs) *Report {
	cp := *r
	cp.Badges = append([]Badge(nil), r.Badges...)
	cp.Inputs = copyInputs(inputs)
	cp.PraiseAndResolve = PraisePlaceholder
	if v := inputs.Get(TagPraiseResolve); v != "" {
		cp.PraiseAndResolve = v
	}
	return &cp
}

// SummaryText is the auto-generated activity summary sentence.
func SummaryText(name string, income, chips int, badges []Badge) string {
	titles := NoBadgesPhrase
	if len(badges) > 0 {
		ts := make([]string, len(badges))
		for i, b := range badges {
			ts[i] = b.Title
		}
		titles = strings.Join(ts, ", ")
	}
	return fmt.Sprintf("%s 학생은 우리 학급 다했니 다했어요 활동을 통해\n*쿠키(%d개), *초코칩(%d개), *뱃지(%s)를 획득하였습니다.",
		name, income, chips, titles)
}

func copyInputs(in UserInputs) UserInputs {
	if len(in) == 0 {
		return nil
	}
	out := make(UserInputs, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
