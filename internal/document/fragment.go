// Package document is the structured intermediate form of a report: a
// sequence of section fragments made of typed blocks. Markup is produced only
// by WriteHTML; the paginator works on the same structure.
package document

type SectionKind string

const (
	KindHeader  SectionKind = "header"
	KindCookie  SectionKind = "cookie"
	KindChip    SectionKind = "chip"
	KindBadge   SectionKind = "badge"
	KindSummary SectionKind = "summary"
	KindFooter  SectionKind = "footer"
	KindError   SectionKind = "error"
)

// Fragment is one rendered section. The zero Fragment is empty and means the
// section was left out; a fragment with a Kind but no columns is a shown
// section whose content blocks are all switched off.
type Fragment struct {
	Kind    SectionKind `json:"kind"`
	Title   string      `json:"title,omitempty"`
	Columns []Column    `json:"columns,omitempty"`

	// ForcedBreakAfter marks the mandatory two-page split point.
	ForcedBreakAfter bool `json:"forcedBreakAfter,omitempty"`
	// DocumentBreakAfter puts the next student's document on a new page.
	DocumentBreakAfter bool `json:"documentBreakAfter,omitempty"`
}

func (f Fragment) IsEmpty() bool { return f.Kind == "" }

// BlockCount is the number of content blocks across all columns.
func (f Fragment) BlockCount() int {
	n := 0
	for _, c := range f.Columns {
		n += len(c.Blocks)
	}
	return n
}

type Column struct {
	Title  string  `json:"title,omitempty"`
	Blocks []Block `json:"blocks"`
}

// Block is one typed content element. The set is closed: Text, Labeled,
// CookieAssets, Balance, BadgeGrid, Notice, Prompt, ErrorNote.
type Block interface {
	block()
}

// Text is a plain paragraph; newlines are kept.
type Text struct {
	Body string `json:"body"`
}

// Labeled is a coloured label over a body, used for the split usage texts.
type Labeled struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Body  string `json:"body"`
}

// CookieAssets is the saving/usage proportion indicator with its line items.
type CookieAssets struct {
	SavingPercent float64 `json:"savingPercent"`
	UsagePercent  float64 `json:"usagePercent"`
	Income        int     `json:"income"`
	Used          int     `json:"used"`
	Balance       int     `json:"balance"`
}

// Balance is a single large figure.
type Balance struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

type BadgeItem struct {
	Title    string `json:"title"`
	ImageRef string `json:"imageRef"`
}

type BadgeGrid struct {
	Badges []BadgeItem `json:"badges"`
}

// Notice is a muted one-line message such as "no badges yet".
type Notice struct {
	Body string `json:"body"`
}

// Prompt is a free-text question for the student, optionally pre-filled.
type Prompt struct {
	Tag         string `json:"tag"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
	Rows        int    `json:"rows,omitempty"`
}

type ErrorNote struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (Text) block()         {}
func (Labeled) block()      {}
func (CookieAssets) block() {}
func (Balance) block()      {}
func (BadgeGrid) block()    {}
func (Notice) block()       {}
func (Prompt) block()       {}
func (ErrorNote) block()    {}

// Document is every fragment for one student, in render order.
type Document struct {
	StudentCode string     `json:"studentCode"`
	StudentName string     `json:"studentName,omitempty"`
	Fragments   []Fragment `json:"fragments"`
}

// BreakIndex is the index of the fragment carrying the forced break, or -1.
func (d Document) BreakIndex() int {
	for i, f := range d.Fragments {
		if f.ForcedBreakAfter {
			return i
		}
	}
	return -1
}

// IsError reports whether d is an inline error block rather than a report.
func (d Document) IsError() bool {
	return len(d.Fragments) == 1 && d.Fragments[0].Kind == KindError
}
