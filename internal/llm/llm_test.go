package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/rubric"
	"github.com/docuscore/docuscore/internal/scoring"
)

type scriptedModel struct {
	reply string
	err   error
	seen  string
}

func (m *scriptedModel) Complete(_ context.Context, prompt string) (string, error) {
	m.seen = prompt
	return m.reply, m.err
}

func sampleGrade(t *testing.T) (rubric.Rubric, *engine.GradeResult) {
	t.Helper()
	rub, err := rubric.Preset("presentation-default")
	require.NoError(t, err)
	return rub, &engine.GradeResult{
		RubricName:        rub.Name,
		TotalPoints:       1.5,
		MaxPossiblePoints: 10,
		Percentage:        15,
		ByCriteria: map[string]scoring.CriterionResult{
			"theme":     {Points: 1, MaxPoints: 1, Level: "theme_2", Reason: "custom theme with colour and font schemes"},
			"structure": {Points: 0.5, MaxPoints: 1, Level: "struct_1", Reason: "3 slides"},
		},
	}
}

func TestRenderPromptIsDeterministic(t *testing.T) {
	rub, res := sampleGrade(t)
	a := RenderPrompt(rub, res, "hello world")
	b := RenderPrompt(rub, res, "hello world")
	require.Equal(t, a, b)
	require.Contains(t, a, "theme_2")
	require.Contains(t, a, "structure, theme")
	require.Contains(t, a, "hello world")
}

func TestRenderPromptTruncatesDocText(t *testing.T) {
	rub, res := sampleGrade(t)
	long := strings.Repeat("x", maxDocTextChars*2)
	p := RenderPrompt(rub, res, long)
	require.Less(t, len(p), maxDocTextChars+2000)
}

func TestParseReview(t *testing.T) {
	rev, err := ParseReview(`{"summary":"solid work","criteria":{"theme":{"comment":"nice palette"}}}`)
	require.NoError(t, err)
	require.Equal(t, "solid work", rev.Summary)
	require.Equal(t, "nice palette", rev.Criteria["theme"].Comment)
}

func TestParseReviewStripsCodeFence(t *testing.T) {
	rev, err := ParseReview("```json\n{\"summary\":\"ok\",\"criteria\":{}}\n```")
	require.NoError(t, err)
	require.Equal(t, "ok", rev.Summary)
}

func TestParseReviewRejectsLooseOutput(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"summary":"ok","extra_field":1}`,
		`{"summary":"ok"} trailing`,
		`{"criteria":{}}`,
	}
	for _, c := range cases {
		if _, err := ParseReview(c); err == nil {
			t.Errorf("ParseReview(%q) should fail", c)
		}
	}
}

func TestReviewerRoundTrip(t *testing.T) {
	rub, res := sampleGrade(t)
	m := &scriptedModel{reply: `{"summary":"good start","criteria":{"structure":{"comment":"add slides","suggestion":"aim for six"}}}`}
	rev, err := NewReviewer(m).Review(context.Background(), rub, res, "")
	require.NoError(t, err)
	require.Equal(t, "good start", rev.Summary)
	require.Contains(t, m.seen, "presentation-default")

	m.err = errors.New("provider down")
	_, err = NewReviewer(m).Review(context.Background(), rub, res, "")
	require.Error(t, err)
}
