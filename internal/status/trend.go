package status

import "fmt"

// Direction is the sign of a month-over-month change.
type Direction string

const (
	Flat       Direction = "flat"
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
)

// TrendWindow is the number of most recent points a trend chart shows.
const TrendWindow = 6

// Trend compares the last two points of a series.
type Trend struct {
	Direction Direction `json:"direction"`
	Delta     int       `json:"delta"`
	Label     string    `json:"label"`
	Color     Color     `json:"color"`
}

// DeriveTrend labels the change between the last two values. It reports
// false when the series has fewer than two points.
func DeriveTrend(series []int) (Trend, bool) {
	if len(series) < 2 {
		return Trend{}, false
	}
	diff := series[len(series)-1] - series[len(series)-2]
	switch {
	case diff == 0:
		return Trend{Direction: Flat, Label: "Stabil", Color: ColorGray}, true
	case diff > 0:
		return Trend{Direction: Increasing, Delta: diff, Label: fmt.Sprintf("Meningkat %d", diff), Color: ColorRed}, true
	default:
		return Trend{Direction: Decreasing, Delta: -diff, Label: fmt.Sprintf("Menurun %d", -diff), Color: ColorGreen}, true
	}
}

// LastN returns the last n elements of s, or all of s if it is shorter.
func LastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
