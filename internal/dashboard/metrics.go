// Package dashboard derives and formats the values shown for predictions and
// prediction history, shared by the web and terminal front ends.
package dashboard

import "math"

// Accuracy returns how close a prediction came to the actual listing price,
// as 100 - |predicted-actual|/actual*100. It is undefined (ok=false) unless
// both prices are present and actual is non-zero.
func Accuracy(predicted, actual *float64) (float64, bool) {
	if predicted == nil || actual == nil || *actual == 0 {
		return 0, false
	}
	diff := math.Abs(*predicted - *actual)
	v := 100 - diff/(*actual)*100
	return v, finite(v)
}

// RealizedReturn returns the listing gain over the issue price in percent,
// (actual-issue)/issue*100. It is undefined unless both prices are present
// and issue is non-zero.
func RealizedReturn(issue, actual *float64) (float64, bool) {
	if issue == nil || actual == nil || *issue == 0 {
		return 0, false
	}
	v := (*actual - *issue) / *issue * 100
	return v, finite(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
