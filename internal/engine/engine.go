// Package engine resolves rubric criteria to detectors, executes them with
// per-criterion failure isolation, and assembles the final grade.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docuscore/docuscore/internal/archive"
	"github.com/docuscore/docuscore/internal/detect"
	"github.com/docuscore/docuscore/internal/features"
	"github.com/docuscore/docuscore/internal/rubric"
	"github.com/docuscore/docuscore/internal/scoring"
)

// GradeResult is the aggregated, per-criterion-itemized score for one
// file. It is a pure output value: immutable after construction, no
// back-reference to the feature model, owned by the caller.
type GradeResult struct {
	FileID            string                             `json:"file_id"`
	Filename          string                             `json:"filename"`
	FileType          string                             `json:"file_type"`
	RubricName        string                             `json:"rubric_name"`
	TotalPoints       float64                            `json:"total_points"`
	MaxPossiblePoints float64                            `json:"max_possible_points"`
	Percentage        float64                            `json:"percentage"`
	Degraded          bool                               `json:"degraded"`
	ByCriteria        map[string]scoring.CriterionResult `json:"by_criteria"`
	GradedAt          time.Time                          `json:"graded_at"`
	ProcessingMS      int64                              `json:"processing_ms"`
}

// ResultCache is an optional read-through cache over whole grade results,
// keyed by content digest and rubric identity. A nil cache and any cache
// error both read as a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (*GradeResult, bool)
	Set(ctx context.Context, key string, res *GradeResult)
}

type Option func(*Engine)

// WithLookup replaces the detector lookup, mainly for tests.
func WithLookup(fn func(key string) (detect.Detector, bool)) Option {
	return func(e *Engine) { e.lookup = fn }
}

func WithArchiveOptions(opts archive.Options) Option {
	return func(e *Engine) { e.archiveOpts = opts }
}

func WithCache(c ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithBatchConcurrency bounds how many files a batch grades at once.
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchLimit = n
		}
	}
}

type Engine struct {
	lookup      func(key string) (detect.Detector, bool)
	archiveOpts archive.Options
	cache       ResultCache
	batchLimit  int
}

func New(opts ...Option) *Engine {
	e := &Engine{
		lookup:      detect.Lookup,
		archiveOpts: archive.DefaultOptions(),
		batchLimit:  4,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Grade evaluates a rubric against an already-extracted feature model.
// If only is non-empty, exactly that subset of criteria (by id) runs,
// preserving rubric order. The percentage denominator stays the rubric's
// declared TotalMaxPoints even for a subset; selective grading reports
// against the full rubric.
func (e *Engine) Grade(ctx context.Context, feats *features.FileFeatures, rub rubric.Rubric, only []string) (*GradeResult, error) {
	selected, err := selectCriteria(rub, only)
	if err != nil {
		return nil, err
	}

	// Resolve every detector up front: an unknown key is a rubric-authoring
	// defect and must surface before any criterion is evaluated.
	detectors := make([]detect.Detector, len(selected))
	for i, c := range selected {
		d, ok := e.lookup(c.DetectorKey)
		if !ok {
			return nil, fmt.Errorf("engine: criterion %q references unknown detector %q", c.ID, c.DetectorKey)
		}
		detectors[i] = d
	}

	byCriteria := make(map[string]scoring.CriterionResult, len(selected))
	for i, c := range selected {
		v := safeEvaluate(detectors[i], feats)
		byCriteria[c.ID] = scoring.Score(v, c, rub.Rounding)
	}

	total := scoring.Total(byCriteria, rub.Rounding)
	res := &GradeResult{
		FileID:            uuid.NewString(),
		Filename:          filenameOf(feats),
		FileType:          string(kindOf(feats)),
		RubricName:        rub.Name,
		TotalPoints:       total,
		MaxPossiblePoints: rub.TotalMaxPoints,
		Percentage:        scoring.Percentage(total, rub.TotalMaxPoints),
		Degraded:          degradedOf(feats),
		ByCriteria:        byCriteria,
		GradedAt:          time.Now().UTC(),
	}
	return res, ctx.Err()
}

// safeEvaluate isolates a panicking detector to its own criterion. The
// criterion records a zero-point "error" result and the run continues.
func safeEvaluate(d detect.Detector, feats *features.FileFeatures) (v detect.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = detect.Verdict{
				Passed: false,
				Points: 0,
				Level:  "error",
				Reason: fmt.Sprintf("detector failure: %v", r),
			}
		}
	}()
	return d.Evaluate(feats)
}

func selectCriteria(rub rubric.Rubric, only []string) ([]rubric.Criterion, error) {
	if len(only) == 0 {
		return rub.Criteria, nil
	}
	wanted := make(map[string]struct{}, len(only))
	for _, id := range only {
		if _, ok := rub.Criterion(id); !ok {
			return nil, fmt.Errorf("engine: rubric %q has no criterion %q", rub.Name, id)
		}
		wanted[id] = struct{}{}
	}
	// Rubric order, not request order, for deterministic output.
	out := make([]rubric.Criterion, 0, len(wanted))
	for _, c := range rub.Criteria {
		if _, ok := wanted[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func filenameOf(f *features.FileFeatures) string {
	switch {
	case f == nil:
		return ""
	case f.Presentation != nil:
		return f.Presentation.Filename
	case f.Document != nil:
		return f.Document.Filename
	default:
		return ""
	}
}

func kindOf(f *features.FileFeatures) features.Kind {
	if f == nil {
		return ""
	}
	return f.Kind
}

func degradedOf(f *features.FileFeatures) bool {
	switch {
	case f == nil:
		return false
	case f.Presentation != nil:
		return f.Presentation.Degraded
	case f.Document != nil:
		return f.Document.Degraded
	default:
		return false
	}
}
