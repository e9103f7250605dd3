package report

import "math"

// Ratio is the cookie spend/save split in percent, one decimal place.
type Ratio struct {
	UsagePercent  float64 `json:"usagePercent"`
	SavingPercent float64 `json:"savingPercent"`
}

// CalculateRatio splits income into used and saved percentages.
// Non-positive income yields {0, 0}. used is not checked against income, so
// over-spending produces usage above 100 and a negative saving.
func CalculateRatio(income, used float64) Ratio {
	if income <= 0 {
		return Ratio{}
	}
	usage := round1(used / income * 100)
	return Ratio{UsagePercent: usage, SavingPercent: round1(100 - usage)}
}

// round1 rounds half up at one decimal place.
func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
