package rewards

import "context"

// Badge is one entry of the upstream badge map.
type Badge struct {
	Title    string `json:"title"`
	ImgURL   string `json:"imgUrl"`
	HasBadge bool   `json:"hasBadge"`
}

// Snapshot is one point-in-time read of a student's reward totals.
type Snapshot struct {
	Name       string           `json:"name"`
	Cookie     int              `json:"cookie"`
	UsedCookie int              `json:"usedCookie"`
	ChocoChips int              `json:"chocoChips"`
	Badges     map[string]Badge `json:"badges"`
}

// Result carries either a Snapshot or an error message, never both.
type Result struct {
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Error    string    `json:"error,omitempty"`
}

func Failed(msg string) Result { return Result{Error: msg} }

func OK(s Snapshot) Result { return Result{Snapshot: &s} }

// Source fetches student data. Failures are reported through Result.Error;
// implementations never return a Go error or panic across this boundary.
type Source interface {
	Fetch(ctx context.Context, studentCode, apiKey string) Result
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, studentCode, apiKey string) Result

func (f SourceFunc) Fetch(ctx context.Context, studentCode, apiKey string) Result {
	return f(ctx, studentCode, apiKey)
}
