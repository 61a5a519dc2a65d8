package synthesis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"go.uber.org/zap"
)

// MinSessions is the quorum of synthesized, completed interviews an aggregate
// synthesis needs.
const MinSessions = 2

var (
	ErrInsufficientData = errors.New("insufficient data for aggregate synthesis")
	ErrNoKeyFindings    = errors.New("aggregate synthesis has no key findings")
)

// AggregateSynthesizer combines per-session syntheses of one study into
// cross-participant findings.
type AggregateSynthesizer struct {
	collaborator intelligence.InterviewCollaborator
	logger       *zap.Logger
	now          func() time.Time
}

func NewAggregateSynthesizer(collaborator intelligence.InterviewCollaborator, logger *zap.Logger) *AggregateSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregateSynthesizer{
		collaborator: collaborator,
		logger:       logger.Named("synthesis"),
		now:          time.Now,
	}
}

// Eligible returns the records of study that can feed an aggregate: completed
// and carrying a per-session synthesis, oldest completion first.
func Eligible(studyID string, records []*domain.SessionRecord) []*domain.SessionRecord {
	var out []*domain.SessionRecord
	for _, r := range records {
		if r == nil || r.StudyID != studyID || r.Status != domain.SessionCompleted || r.Synthesis == nil {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return completedAt(out[i]).Before(completedAt(out[j]))
	})
	return out
}

func completedAt(r *domain.SessionRecord) time.Time {
	if r.CompletedAt == nil {
		return time.Time{}
	}
	return *r.CompletedAt
}

// Synthesize produces the aggregate for study from records. Fewer than
// MinSessions eligible records fail with ErrInsufficientData. A collaborator
// failure yields the placeholder aggregate, not an error.
func (a *AggregateSynthesizer) Synthesize(ctx context.Context, study *domain.StudyConfig, records []*domain.SessionRecord) (*domain.AggregateSynthesisResult, error) {
	if study == nil {
		return nil, fmt.Errorf("study is required")
	}
	eligible := Eligible(study.ID, records)
	if len(eligible) < MinSessions {
		return nil, fmt.Errorf("%w: study %s has %d completed interviews with synthesis, need at least %d",
			ErrInsufficientData, study.ID, len(eligible), MinSessions)
	}

	results := make([]domain.SynthesisResult, len(eligible))
	for i, r := range eligible {
		results[i] = *r.Synthesis
	}

	now := a.now().UTC()
	agg, err := a.collaborator.SynthesizeAggregate(ctx, study, results).Get()
	if err != nil {
		a.logger.Warn("aggregate synthesis failed, using placeholder",
			zap.String("study_id", study.ID),
			zap.Int("interviews", len(results)),
			zap.Error(err))
		agg = intelligence.PlaceholderAggregate(now)
	}

	agg.StudyID = study.ID
	agg.InterviewCount = len(results)
	agg.GeneratedAt = now
	agg.Normalize()
	return &agg, nil
}
