// Package results persists rubrics and grade results. The grading core
// never touches storage; the service layer saves what the engine returns.
package results

import (
	"context"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/rubric"
)

type ListOpts struct {
	RubricName string
	FileType   string
	Limit      int
	Offset     int
}

type Store interface {
	SaveResult(ctx context.Context, res *engine.GradeResult) (string, error) // returns result id
	GetResult(ctx context.Context, id string) (*engine.GradeResult, error)
	ListResults(ctx context.Context, opts ListOpts) ([]*engine.GradeResult, error)

	PutRubric(ctx context.Context, r rubric.Rubric) error
	// GetRubric falls back to the built-in presets for names that were
	// never stored.
	GetRubric(ctx context.Context, name string) (rubric.Rubric, error)
	ListRubrics(ctx context.Context) ([]rubric.Rubric, error)
}
