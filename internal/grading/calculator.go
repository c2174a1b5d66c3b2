package grading

import (
	"strings"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// Result pass/fail verdict
type Result string

const (
	ResultPass Result = "APTO"
	ResultFail Result = "NO APTO"
	ResultNone Result = ""
)

// Business thresholds. Not configurable per course.
const (
	PassingAverage   = 70.0
	PassingPractical = 80.0
	MinScore         = 0.0
	MaxScore         = 100.0
)

// noLicenseMarker in the notes fails the student regardless of scores.
const noLicenseMarker = "sin licencia"

// ComputeAverage averages whichever exams have been entered so far.
// A score <= 0 counts as not entered and is left out of both the sum and the count.
// The practical exam only takes part when the course requires it.
func ComputeAverage(initial, final, practical float64, requiresPractical bool) float64 {
	scores := []float64{initial, final}
	if requiresPractical {
		scores = append(scores, practical)
	}

	var sum float64
	var n int
	for _, s := range scores {
		if !(s > 0) {
			continue
		}
		sum += s
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// DetermineResult decides APTO / NO APTO.
func DetermineResult(average, practical float64, requiresPractical bool, notes string) Result {
	if HasNoLicense(notes) {
		return ResultFail
	}
	if requiresPractical {
		if practical >= PassingPractical && average >= PassingAverage {
			return ResultPass
		}
		return ResultFail
	}
	if average >= PassingAverage {
		return ResultPass
	}
	return ResultFail
}

// HasNoLicense reports whether notes carry the "sin licencia" marker, case-insensitively.
func HasNoLicense(notes string) bool {
	return strings.Contains(strings.ToLower(notes), noLicenseMarker)
}

// Evaluate recomputes the derived columns of g in place.
func Evaluate(g *model.Grade, requiresPractical bool) {
	if !requiresPractical {
		g.PracticalExam = 0
	}
	g.Average = ComputeAverage(g.InitialExam, g.FinalExam, g.PracticalExam, requiresPractical)
	g.Result = string(DetermineResult(g.Average, g.PracticalExam, requiresPractical, g.Notes))
}

// ClampScore limits a score to [0, 100].
func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
