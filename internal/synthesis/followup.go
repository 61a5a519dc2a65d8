package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxFollowupTopics caps how many common themes become topic areas.
const maxFollowupTopics = 5

// FollowupGenerator drafts a new study from an aggregate synthesis. Drafts are
// never saved here.
type FollowupGenerator struct {
	collaborator intelligence.InterviewCollaborator
	logger       *zap.Logger
	now          func() time.Time
}

func NewFollowupGenerator(collaborator intelligence.InterviewCollaborator, logger *zap.Logger) *FollowupGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowupGenerator{
		collaborator: collaborator,
		logger:       logger.Named("followup"),
		now:          time.Now,
	}
}

// Generate returns a draft study derived from agg. The parent's profile
// schema, behavior mode and consent text carry over unchanged; topic areas
// are the first common themes; lineage always points back at parent.
func (g *FollowupGenerator) Generate(ctx context.Context, parent *domain.StudyConfig, agg *domain.AggregateSynthesisResult) (*domain.StudyConfig, error) {
	if parent == nil || agg == nil {
		return nil, fmt.Errorf("parent study and aggregate synthesis are required")
	}
	if !hasFinding(agg.KeyFindings) {
		return nil, fmt.Errorf("%w: study %s", ErrNoKeyFindings, parent.ID)
	}

	proposal, err := g.collaborator.GenerateFollowup(ctx, parent, agg).Get()
	if err != nil {
		g.logger.Warn("follow-up generation failed, using template",
			zap.String("parent_study_id", parent.ID),
			zap.Error(err))
		proposal = intelligence.DeterministicFollowup(parent, agg)
	}

	now := g.now().UTC()
	draft := &domain.StudyConfig{
		ID:               uuid.New().String(),
		Name:             proposal.Name,
		ResearchQuestion: proposal.ResearchQuestion,
		CoreQuestions:    append([]string(nil), proposal.CoreQuestions...),
		TopicAreas:       topicsFromThemes(agg.CommonThemes),
		ProfileSchema:    copySchema(parent.ProfileSchema),
		Mode:             parent.Mode,
		ConsentText:      parent.ConsentText,
		Lineage: &domain.Lineage{
			ParentID:      parent.ID,
			ParentName:    parent.Name,
			GeneratedFrom: domain.GeneratedFromSynthesis,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return draft, nil
}

func hasFinding(findings []string) bool {
	for _, f := range findings {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// topicsFromThemes keeps the collaborator's theme order.
func topicsFromThemes(themes []domain.CommonTheme) []string {
	topics := []string{}
	for _, t := range themes {
		name := strings.TrimSpace(t.Theme)
		if name == "" {
			continue
		}
		topics = append(topics, name)
		if len(topics) == maxFollowupTopics {
			break
		}
	}
	return topics
}

func copySchema(schema []domain.ProfileField) []domain.ProfileField {
	if schema == nil {
		return nil
	}
	out := make([]domain.ProfileField, len(schema))
	for i, f := range schema {
		out[i] = f
		if f.Options != nil {
			out[i].Options = append([]string(nil), f.Options...)
		}
	}
	return out
}
