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
)

func testAggregate() *domain.AggregateSynthesisResult {
	return &domain.AggregateSynthesisResult{
		CommonThemes: []domain.CommonTheme{
			{Theme: "pace"}, {Theme: "cost"}, {Theme: " "}, {Theme: "tools"},
			{Theme: "trust"}, {Theme: "handoffs"}, {Theme: "sleep"},
		},
		KeyFindings: []string{"Handoffs lose information."},
		BottomLine:  "Handoffs hurt.",
	}
}

func TestGenerate_FromCollaborator(t *testing.T) {
	parent := testutil.NewTestStudy("Shift handoffs", testutil.WithMode(domain.ModeExploratory))
	collab := &testutil.StubCollaborator{Followup: func(*domain.StudyConfig, *domain.AggregateSynthesisResult) intelligence.Outcome[intelligence.FollowupProposal] {
		return intelligence.Success(intelligence.FollowupProposal{
			Name:             "Handoff deep dive",
			ResearchQuestion: "Why do handoffs lose information?",
			CoreQuestions:    []string{"Describe your last handoff."},
		})
	}}
	g := NewFollowupGenerator(collab, nil)
	g.now = func() time.Time { return fixedNow }

	draft, err := g.Generate(context.Background(), parent, testAggregate())
	require.NoError(t, err)

	assert.Equal(t, "Handoff deep dive", draft.Name)
	assert.Equal(t, []string{"Describe your last handoff."}, draft.CoreQuestions)
	assert.Equal(t, []string{"pace", "cost", "tools", "trust", "handoffs"}, draft.TopicAreas)
	assert.Equal(t, parent.ProfileSchema, draft.ProfileSchema)
	assert.Equal(t, domain.ModeExploratory, draft.Mode)
	assert.Equal(t, parent.ConsentText, draft.ConsentText)
	require.NotNil(t, draft.Lineage)
	assert.Equal(t, domain.Lineage{ParentID: parent.ID, ParentName: parent.Name, GeneratedFrom: "synthesis"}, *draft.Lineage)
	assert.NotEqual(t, parent.ID, draft.ID)
	assert.NoError(t, domain.ValidateIdentifier("study", draft.ID))
	assert.Empty(t, draft.Validate())
	assert.Equal(t, fixedNow, draft.CreatedAt)
	assert.False(t, draft.Locked)
	assert.Zero(t, draft.InterviewCount)
}

func TestGenerate_TemplateFallback(t *testing.T) {
	parent := testutil.NewTestStudy("Shift handoffs")
	draft, err := NewFollowupGenerator(&testutil.StubCollaborator{}, nil).Generate(context.Background(), parent, testAggregate())
	require.NoError(t, err)

	assert.Equal(t, "Follow-up: Shift handoffs", draft.Name)
	assert.Equal(t, "What explains the finding that handoffs lose information?", draft.ResearchQuestion)
	assert.Len(t, draft.CoreQuestions, 3)
	assert.Equal(t, parent.ID, draft.Lineage.ParentID)
}

func TestGenerate_RequiresKeyFindings(t *testing.T) {
	parent := testutil.NewTestStudy("No findings")
	g := NewFollowupGenerator(&testutil.StubCollaborator{}, nil)

	_, err := g.Generate(context.Background(), parent, &domain.AggregateSynthesisResult{KeyFindings: []string{" "}})
	assert.ErrorIs(t, err, ErrNoKeyFindings)

	_, err = g.Generate(context.Background(), parent, nil)
	assert.Error(t, err)
}

func TestGenerate_SchemaIsCopied(t *testing.T) {
	parent := testutil.NewTestStudy("Copy")
	draft, err := NewFollowupGenerator(&testutil.StubCollaborator{}, nil).Generate(context.Background(), parent, testAggregate())
	require.NoError(t, err)

	draft.ProfileSchema[1].Options[0] = "changed"
	assert.Equal(t, "<1 year", parent.ProfileSchema[1].Options[0])
}
