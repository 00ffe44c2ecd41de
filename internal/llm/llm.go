// Package llm turns a finished grade into qualitative feedback through a
// pluggable chat model. The package owns only the prompt contract and the
// response schema; callers supply the model client.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/rubric"
)

// ChatModel is one completion round trip. Implementations wrap whatever
// provider the deployment uses.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CriterionNote is the model's commentary for one rubric criterion.
type CriterionNote struct {
	Comment    string `json:"comment"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Review is the parsed model response.
type Review struct {
	Summary  string                   `json:"summary"`
	Criteria map[string]CriterionNote `json:"criteria"`
}

type Reviewer struct {
	model ChatModel
}

func NewReviewer(model ChatModel) *Reviewer { return &Reviewer{model: model} }

// Review renders the prompt, calls the model, and parses the response
// strictly. docText is the extracted text of the submission; pass "" when
// extraction was degraded.
func (rv *Reviewer) Review(ctx context.Context, rub rubric.Rubric, res *engine.GradeResult, docText string) (*Review, error) {
	if rv.model == nil {
		return nil, errors.New("llm: no model configured")
	}
	raw, err := rv.model.Complete(ctx, RenderPrompt(rub, res, docText))
	if err != nil {
		return nil, fmt.Errorf("llm: complete: %w", err)
	}
	return ParseReview(raw)
}

const maxDocTextChars = 8000

// RenderPrompt builds the grading-feedback prompt. Criteria appear in
// rubric order so repeated runs produce identical prompts.
func RenderPrompt(rub rubric.Rubric, res *engine.GradeResult, docText string) string {
	var b strings.Builder
	b.WriteString("You are reviewing a graded student submission.\n")
	fmt.Fprintf(&b, "Rubric: %s (version %s), total %g of %g points (%g%%).\n",
		rub.Name, rub.Version, res.TotalPoints, res.MaxPossiblePoints, res.Percentage)
	if res.Degraded {
		b.WriteString("The file could not be fully parsed; scores are estimates.\n")
	}
	b.WriteString("\nPer-criterion outcome:\n")
	for _, c := range rub.Criteria {
		cr, ok := res.ByCriteria[c.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %g of %g points, level %q, reason: %s\n",
			c.ID, c.Name, cr.Points, cr.MaxPoints, cr.Level, cr.Reason)
	}
	if docText != "" {
		if len(docText) > maxDocTextChars {
			docText = docText[:maxDocTextChars]
		}
		b.WriteString("\nExtracted document text:\n")
		b.WriteString(docText)
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with JSON only, no prose around it, using exactly this shape:\n")
	b.WriteString(`{"summary": "...", "criteria": {"<criterion_id>": {"comment": "...", "suggestion": "..."}}}`)
	b.WriteString("\nCover these criterion ids: ")
	ids := make([]string, 0, len(res.ByCriteria))
	for id := range res.ByCriteria {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	b.WriteString(strings.Join(ids, ", "))
	b.WriteString("\n")
	return b.String()
}

// ParseReview decodes a model response. Markdown code fences around the
// JSON are tolerated; unknown fields and trailing content are not.
func ParseReview(raw string) (*Review, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	var rev Review
	if err := dec.Decode(&rev); err != nil {
		return nil, fmt.Errorf("llm: bad response: %w", err)
	}
	if dec.More() {
		return nil, errors.New("llm: trailing content after JSON")
	}
	if rev.Summary == "" {
		return nil, errors.New("llm: response missing summary")
	}
	return &rev, nil
}
