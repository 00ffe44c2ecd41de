package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/docuscore/docuscore/internal/archive"
	"github.com/docuscore/docuscore/internal/features"
	"github.com/docuscore/docuscore/internal/rubric"
)

// GradeBytes runs the whole pipeline for one file: container extraction,
// feature extraction, rubric evaluation. Outside of configuration errors
// and unreadable containers it always returns a complete result; file
// quality problems show up as low scores with reasons, not failed calls.
func (e *Engine) GradeBytes(ctx context.Context, raw []byte, filename string, fileType rubric.FileType, rub rubric.Rubric, only []string) (*GradeResult, error) {
	start := time.Now()

	cacheKey := ""
	if e.cache != nil && len(only) == 0 {
		cacheKey = resultCacheKey(raw, rub)
		if cached, ok := e.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	format, ok := archive.Sniff(raw)
	if !ok {
		format = archive.FormatZip
	}
	res, err := archive.Extract(raw, format, e.archiveOpts)
	if err != nil {
		// A structurally corrupt container still yields a degraded model;
		// only signature/size failures abort here, since the bytes are then
		// not a document package at all.
		if errors.Is(err, archive.ErrCorrupt) {
			res = nil
		} else {
			return nil, fmt.Errorf("engine: %s: %w", filename, err)
		}
	}

	feats := extractFeatures(res, filename, int64(len(raw)), fileType)
	grade, err := e.Grade(ctx, feats, rub, only)
	if err != nil {
		return nil, err
	}
	grade.ProcessingMS = time.Since(start).Milliseconds()

	if e.cache != nil && cacheKey != "" {
		e.cache.Set(ctx, cacheKey, grade)
	}
	return grade, nil
}

func extractFeatures(res *archive.Result, filename string, size int64, fileType rubric.FileType) *features.FileFeatures {
	switch fileType {
	case rubric.FileTypeDocument:
		return &features.FileFeatures{
			Kind:     features.KindDocument,
			Document: features.ExtractDocument(res, filename, size),
		}
	default:
		return &features.FileFeatures{
			Kind:         features.KindPresentation,
			Presentation: features.ExtractPresentation(res, filename, size),
		}
	}
}

// resultCacheKey ties a cached grade to the exact bytes and rubric
// identity that produced it.
func resultCacheKey(raw []byte, rub rubric.Rubric) string {
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("grade:%s:%s:%s", hex.EncodeToString(sum[:]), rub.Name, rub.Version)
}
