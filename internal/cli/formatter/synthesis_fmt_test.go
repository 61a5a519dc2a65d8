package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatAggregate(t *testing.T) {
	agg := &domain.AggregateSynthesisResult{
		StudyID:        "s1",
		InterviewCount: 3,
		CommonThemes: []domain.CommonTheme{
			{Theme: "fatigue", Frequency: 3, RepresentativeQuotes: []string{"I am always tired"}},
		},
		DivergentViews:       []domain.DivergentView{{Topic: "rotas", ViewA: "fixed", ViewB: "flexible"}},
		KeyFindings:          []string{"Night shifts drive turnover."},
		ResearchImplications: []string{"Study rota design."},
		BottomLine:           "Fatigue dominates.",
		Source:               "llm",
		GeneratedAt:          time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
	}

	out := stripANSI(FormatAggregate(agg))
	assert.Contains(t, out, "Fatigue dominates.")
	assert.Contains(t, out, "3 interviews, llm")
	assert.Contains(t, out, "fatigue x3")
	assert.Contains(t, out, "I am always tired")
	assert.Contains(t, out, "A fixed")
	assert.Contains(t, out, "B flexible")
	assert.Contains(t, out, "Night shifts drive turnover.")
	assert.Contains(t, out, "Study rota design.")
}

func TestFormatAggregate_EmptyLists(t *testing.T) {
	agg := &domain.AggregateSynthesisResult{BottomLine: "Pending", Source: "placeholder"}
	agg.Normalize()
	out := stripANSI(FormatAggregate(agg))
	assert.Contains(t, out, "none")
	assert.NotContains(t, out, "DIVERGENT VIEWS")
}

func TestFormatDraft(t *testing.T) {
	d := testutil.NewTestStudy("Follow-up: Shift work")
	d.Lineage = &domain.Lineage{ParentID: "p", ParentName: "Shift work", GeneratedFrom: domain.GeneratedFromSynthesis}

	out := stripANSI(FormatDraft(d))
	assert.Contains(t, out, "Follow-up of Shift work")
	assert.Contains(t, out, "Draft only")
}
