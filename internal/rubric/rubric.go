package rubric

import (
	"fmt"
	"math"
)

// Rounding selects how awarded points are snapped after clamping.
type Rounding string

const (
	// RoundHalfUpQuarter snaps to the nearest multiple of 0.25.
	RoundHalfUpQuarter Rounding = "half_up_0.25"
	// RoundNone passes values through unchanged.
	RoundNone Rounding = "none"
)

// FileType identifies the document kind a rubric applies to.
type FileType string

const (
	FileTypePresentation FileType = "pptx"
	FileTypeDocument     FileType = "docx"
)

// Level is a named point tier. Levels document the point scale for
// teachers and the UI; detectors never consult them at run time.
type Level struct {
	Name        string  `json:"name"`
	Points      float64 `json:"points"`
	Description string  `json:"description,omitempty"`
}

type Criterion struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DetectorKey string  `json:"detector_key"`
	MaxPoints   float64 `json:"max_points"`
	Levels      []Level `json:"levels,omitempty"`
}

type Rubric struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	FileType       FileType    `json:"file_type"`
	TotalMaxPoints float64     `json:"total_max_points"`
	Rounding       Rounding    `json:"rounding"`
	Criteria       []Criterion `json:"criteria"`
}

// Criterion returns the criterion with the given id, if present.
func (r Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Validate runs the upstream consistency checks. The engine itself trusts
// TotalMaxPoints as the percentage denominator; this is for rubric authoring.
func (r Rubric) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rubric name is required")
	}
	switch r.Rounding {
	case RoundHalfUpQuarter, RoundNone:
	default:
		return fmt.Errorf("unknown rounding policy %q", r.Rounding)
	}
	if len(r.Criteria) == 0 {
		return fmt.Errorf("rubric %q has no criteria", r.Name)
	}
	seen := make(map[string]struct{}, len(r.Criteria))
	sum := 0.0
	for _, c := range r.Criteria {
		if c.ID == "" {
			return fmt.Errorf("rubric %q: criterion with empty id", r.Name)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("rubric %q: duplicate criterion id %q", r.Name, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.DetectorKey == "" {
			return fmt.Errorf("rubric %q: criterion %q has no detector key", r.Name, c.ID)
		}
		if c.MaxPoints <= 0 {
			return fmt.Errorf("rubric %q: criterion %q must have max_points > 0", r.Name, c.ID)
		}
		sum += c.MaxPoints
	}
	if math.Abs(sum-r.TotalMaxPoints) > 1e-9 {
		return fmt.Errorf("rubric %q: total_max_points %.2f does not match criteria sum %.2f",
			r.Name, r.TotalMaxPoints, sum)
	}
	return nil
}
