package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/docuscore/docuscore/internal/rubric"
)

// BatchFile is one submission in a batch run.
type BatchFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// BatchError records a file that could not be graded. The batch still
// returns every file that succeeded.
type BatchError struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// GradeBatch grades files independently under a bounded concurrency
// limit. Result ordering does not follow input ordering; each result
// carries its originating file id.
func (e *Engine) GradeBatch(ctx context.Context, files []BatchFile, fileType rubric.FileType, rub rubric.Rubric, only []string) ([]*GradeResult, []BatchError) {
	var (
		mu      sync.Mutex
		results []*GradeResult
		failed  []BatchError
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchLimit)
	for _, file := range files {
		f := file
		g.Go(func() error {
			res, err := e.GradeBytes(ctx, f.Data, f.Filename, fileType, rub, only)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, BatchError{FileID: f.ID, Filename: f.Filename, Error: err.Error()})
				return nil
			}
			if f.ID != "" {
				res.FileID = f.ID
			}
			results = append(results, res)
			return nil
		})
	}
	_ = g.Wait()
	return results, failed
}
