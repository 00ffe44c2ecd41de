// Package scoring clamps, rounds and aggregates detector verdicts.
package scoring

import (
	"math"

	"github.com/docuscore/docuscore/internal/detect"
	"github.com/docuscore/docuscore/internal/rubric"
)

// CriterionResult is a verdict after scoring: points clamped to
// [0, maxPoints] and rounded under the rubric's policy.
type CriterionResult struct {
	Passed    bool    `json:"passed"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
	Level     string  `json:"level"`
	Reason    string  `json:"reason"`
	Details   any     `json:"details,omitempty"`
}

// Clamp bounds points to [0, max].
func Clamp(points, max float64) float64 {
	if points < 0 {
		return 0
	}
	if points > max {
		return max
	}
	return points
}

// Round applies the rounding policy. half_up_0.25 snaps to the nearest
// quarter point; ties round away from zero (math.Round), which is what
// the grading service has always shipped.
func Round(policy rubric.Rounding, v float64) float64 {
	switch policy {
	case rubric.RoundHalfUpQuarter:
		return math.Round(v*4) / 4
	default:
		return v
	}
}

// Score converts a raw verdict into the stored per-criterion result.
func Score(v detect.Verdict, c rubric.Criterion, policy rubric.Rounding) CriterionResult {
	return CriterionResult{
		Passed:    v.Passed,
		Points:    Round(policy, Clamp(v.Points, c.MaxPoints)),
		MaxPoints: c.MaxPoints,
		Level:     v.Level,
		Reason:    v.Reason,
		Details:   v.Details,
	}
}

// Total sums already-rounded per-criterion points and rounds the sum again
// under the same policy. The double rounding is intentional, long-shipped
// behavior; see TestTotalDoubleRounds before changing it.
func Total(results map[string]CriterionResult, policy rubric.Rounding) float64 {
	sum := 0.0
	for _, r := range results {
		sum += r.Points
	}
	return Round(policy, sum)
}

// Percentage is the rounded-to-2-decimals percentage of max, and 0 when
// max is not positive.
func Percentage(total, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(total/max*100*100) / 100
}
