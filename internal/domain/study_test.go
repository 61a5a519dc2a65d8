package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStudy() *StudyConfig {
	return &StudyConfig{
		ID:            "remote-work",
		Name:          "Remote work habits",
		CoreQuestions: []string{"How do you start your day?"},
		TopicAreas:    []string{"routines"},
		ProfileSchema: testSchema(),
		Mode:          ModeStandard,
	}
}

func TestStudyValidate_Valid(t *testing.T) {
	assert.Empty(t, validStudy().Validate())
}

func TestStudyValidate_RequiresCoreQuestion(t *testing.T) {
	s := validStudy()
	s.CoreQuestions = nil

	errs := s.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "core question")
}

func TestStudyValidate_DuplicateFieldIDs(t *testing.T) {
	s := validStudy()
	s.ProfileSchema = append(s.ProfileSchema, ProfileField{ID: "role", Label: "Again"})

	errs := s.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicated")
}

func TestStudyValidate_CollectsAllErrors(t *testing.T) {
	s := &StudyConfig{ID: "bad id!", Mode: "chaotic"}

	errs := s.Validate()
	assert.Len(t, errs, 4) // id, name, core questions, mode
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("study", "abc_DEF-123"))
	assert.Error(t, ValidateIdentifier("study", ""))
	assert.Error(t, ValidateIdentifier("study", "has space"))
	assert.Error(t, ValidateIdentifier("study", "a/b"))
	assert.Error(t, ValidateIdentifier("study", string(make([]byte, 65))))
}

func TestFirstTopic(t *testing.T) {
	s := validStudy()
	assert.Equal(t, "routines", s.FirstTopic())
	s.TopicAreas = nil
	assert.Equal(t, "", s.FirstTopic())
}

func TestSessionRecord_ValidateForSave(t *testing.T) {
	rec := &SessionRecord{
		ID:      "sess-1",
		StudyID: "remote-work",
		Profile: NewParticipantProfile(nil, time.Now()),
	}
	err := rec.ValidateForSave()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript is empty")

	rec.Transcript = []InterviewMessage{{ID: "m1", Role: RoleAI, Content: "Hi"}}
	assert.NoError(t, rec.ValidateForSave())

	rec.StudyID = "../other"
	assert.Error(t, rec.ValidateForSave())
}

func TestSessionRecord_AttachSynthesisOnce(t *testing.T) {
	rec := &SessionRecord{ID: "sess-1"}
	require.NoError(t, rec.AttachSynthesis(&SynthesisResult{BottomLine: "first"}))

	err := rec.AttachSynthesis(&SynthesisResult{BottomLine: "second"})
	require.Error(t, err)
	assert.Equal(t, "first", rec.Synthesis.BottomLine)
}

func TestBehaviorData_RecordTurnAndTopics(t *testing.T) {
	b := NewBehaviorData()
	b.RecordTurn(PhaseBackground, 30*time.Second)
	b.RecordTurn(PhaseBackground, 0)
	b.RecordTurn(PhaseExploration, 2*time.Second)

	assert.Equal(t, 2, b.MessagesPerPhase[PhaseBackground])
	assert.Equal(t, 1, b.MessagesPerPhase[PhaseExploration])
	assert.Equal(t, 30.0, b.TimePerTopic[PhaseBackground])

	b.AddExploredTopic("tools")
	b.AddExploredTopic("tools")
	b.AddExploredTopic("")
	b.AddExploredTopic("meetings")
	assert.Equal(t, []string{"tools", "meetings"}, b.ExploredTopics)
}

func TestAggregateNormalize_NoNilLists(t *testing.T) {
	a := &AggregateSynthesisResult{CommonThemes: []CommonTheme{{Theme: "x"}}}
	a.Normalize()

	assert.NotNil(t, a.KeyFindings)
	assert.NotNil(t, a.DivergentViews)
	assert.NotNil(t, a.ResearchImplications)
	assert.NotNil(t, a.CommonThemes[0].RepresentativeQuotes)
}
