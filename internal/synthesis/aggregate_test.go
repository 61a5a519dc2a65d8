package synthesis

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"github.com/alexanderramin/elicit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func completedRecord(studyID string, completed time.Time, synth *domain.SynthesisResult) *domain.SessionRecord {
	return &domain.SessionRecord{
		ID:          "s-" + completed.Format("150405"),
		StudyID:     studyID,
		Status:      domain.SessionCompleted,
		CompletedAt: &completed,
		Synthesis:   synth,
	}
}

func newSynthesizer(collab intelligence.InterviewCollaborator) *AggregateSynthesizer {
	a := NewAggregateSynthesizer(collab, nil)
	a.now = func() time.Time { return fixedNow }
	return a
}

func TestSynthesize_RejectsBelowQuorum(t *testing.T) {
	study := testutil.NewTestStudy("Quorum")
	collab := &testutil.StubCollaborator{}
	a := newSynthesizer(collab)

	_, err := a.Synthesize(context.Background(), study, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	one := []*domain.SessionRecord{completedRecord(study.ID, fixedNow, testutil.NewTestSynthesis("a", "pace"))}
	_, err = a.Synthesize(context.Background(), study, one)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "has 1 completed interviews")
	assert.Equal(t, int32(0), collab.AggregateCalls.Load())
}

func TestSynthesize_IgnoresIneligibleRecords(t *testing.T) {
	study := testutil.NewTestStudy("Eligibility")
	inProgress := completedRecord(study.ID, fixedNow, testutil.NewTestSynthesis("x", "x"))
	inProgress.Status = domain.SessionInProgress
	records := []*domain.SessionRecord{
		completedRecord(study.ID, fixedNow, testutil.NewTestSynthesis("a", "pace")),
		completedRecord(study.ID, fixedNow.Add(time.Second), nil),
		completedRecord("other-study", fixedNow, testutil.NewTestSynthesis("b", "pace")),
		inProgress,
		nil,
	}

	_, err := newSynthesizer(&testutil.StubCollaborator{}).Synthesize(context.Background(), study, records)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSynthesize_Success(t *testing.T) {
	study := testutil.NewTestStudy("Aggregate")
	var seen []domain.SynthesisResult
	collab := &testutil.StubCollaborator{Aggregate: func(_ *domain.StudyConfig, results []domain.SynthesisResult) intelligence.Outcome[domain.AggregateSynthesisResult] {
		seen = results
		return intelligence.Success(domain.AggregateSynthesisResult{
			CommonThemes: []domain.CommonTheme{{Theme: "pace", Frequency: 2}},
			KeyFindings:  []string{"Pace matters"},
			BottomLine:   "Everyone talks about pace.",
			Source:       "llm",
		})
	}}
	later := completedRecord(study.ID, fixedNow.Add(time.Hour), testutil.NewTestSynthesis("second", "pace"))
	earlier := completedRecord(study.ID, fixedNow, testutil.NewTestSynthesis("first", "pace"))

	agg, err := newSynthesizer(collab).Synthesize(context.Background(), study, []*domain.SessionRecord{later, earlier})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "first", seen[0].BottomLine, "inputs ordered by completion")
	assert.Equal(t, study.ID, agg.StudyID)
	assert.Equal(t, 2, agg.InterviewCount)
	assert.Equal(t, fixedNow, agg.GeneratedAt)
	assert.Equal(t, "llm", agg.Source)
	assert.NotNil(t, agg.DivergentViews)
	assert.NotNil(t, agg.ResearchImplications)
}

func TestSynthesize_CollaboratorFailureUsesPlaceholder(t *testing.T) {
	study := testutil.NewTestStudy("Placeholder")
	core, logs := observer.New(zap.WarnLevel)
	a := NewAggregateSynthesizer(&testutil.StubCollaborator{}, zap.New(core))
	a.now = func() time.Time { return fixedNow }
	records := []*domain.SessionRecord{
		completedRecord(study.ID, fixedNow, testutil.NewTestSynthesis("a", "pace")),
		completedRecord(study.ID, fixedNow.Add(time.Minute), testutil.NewTestSynthesis("b", "cost")),
		completedRecord(study.ID, fixedNow.Add(2*time.Minute), testutil.NewTestSynthesis("c", "cost")),
	}

	agg, err := a.Synthesize(context.Background(), study, records)
	require.NoError(t, err)

	assert.Equal(t, "placeholder", agg.Source)
	assert.Equal(t, 3, agg.InterviewCount)
	assert.NotEmpty(t, agg.BottomLine)
	assert.NotNil(t, agg.CommonThemes)
	assert.NotNil(t, agg.KeyFindings)
	assert.Equal(t, 1, logs.FilterMessage("aggregate synthesis failed, using placeholder").Len())
}

func TestSynthesize_RecomputeIsStructurallyIdempotent(t *testing.T) {
	study := testutil.NewTestStudy("Idempotent")
	collab := &testutil.StubCollaborator{Aggregate: func(_ *domain.StudyConfig, results []domain.SynthesisResult) intelligence.Outcome[domain.AggregateSynthesisResult] {
		return intelligence.Success(domain.AggregateSynthesisResult{
			KeyFindings: []string{results[0].BottomLine},
			BottomLine:  "same",
		})
	}}
	records := []*domain.SessionRecord{
		completedRecord(study.ID, fixedNow, testutil.NewTestSynthesis("a", "pace")),
		completedRecord(study.ID, fixedNow.Add(time.Minute), testutil.NewTestSynthesis("b", "cost")),
	}
	a := newSynthesizer(collab)

	first, err := a.Synthesize(context.Background(), study, records)
	require.NoError(t, err)
	second, err := a.Synthesize(context.Background(), study, records)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
