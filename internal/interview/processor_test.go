package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"github.com/alexanderramin/elicit/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

var sessionStart = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, study *domain.StudyConfig) *Session {
	t.Helper()
	s, err := NewSession(study, "p-1", sessionStart)
	require.NoError(t, err)
	return s
}

func newProcessor(collab intelligence.InterviewCollaborator) *TurnProcessor {
	p := NewTurnProcessor(collab, nil)
	p.now = (&stepClock{t: sessionStart, step: 10 * time.Second}).Now
	return p
}

func TestProcessTurn_ExampleScenario(t *testing.T) {
	study := testutil.NewTestStudy("Night shifts")
	require.Len(t, study.CoreQuestions, 3)
	require.Len(t, study.ProfileSchema, 2)

	collab := &testutil.StubCollaborator{Turn: testutil.ScriptedTurns(
		intelligence.TurnResponse{
			Message: "Thanks. How long have you worked nights?",
			ProfileUpdates: []intelligence.ProfileUpdate{
				{FieldID: "role", Value: testutil.Ptr("nurse"), Status: domain.FieldExtracted},
			},
		},
		intelligence.TurnResponse{
			Message:           "What is the hardest part?",
			PhaseTransition:   testutil.Ptr(domain.PhaseCoreQuestions),
			QuestionAddressed: testutil.Ptr(0),
		},
		intelligence.TurnResponse{
			Message:        "Thank you for your time.",
			ShouldConclude: true,
		},
	)}
	p := newProcessor(collab)
	s := newTestSession(t, study)
	ctx := context.Background()

	// Turn 1
	res, err := p.ProcessTurn(ctx, s, "I'm a nurse on the ICU.", false)
	require.NoError(t, err)
	role, _ := s.Profile().Field("role")
	assert.Equal(t, domain.FieldExtracted, role.Status)
	assert.Equal(t, "nurse", *role.Value)
	assert.Equal(t, domain.PhaseBackground, s.Phase())
	assert.Empty(t, s.Progress().QuestionsAsked)
	assert.Equal(t, []string{"role"}, res.AppliedFields)
	assert.Equal(t, "I'm a nurse on the ICU.", s.Profile().RawContext)

	// Turn 2
	_, err = p.ProcessTurn(ctx, s, "About four years.", false)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCoreQuestions, s.Phase())
	assert.Equal(t, []int{0}, s.Progress().QuestionsAsked)
	assert.False(t, s.IsComplete())

	// Turn 3: conclusion always lands in wrap-up.
	res, err = p.ProcessTurn(ctx, s, "The fatigue.", false)
	require.NoError(t, err)
	assert.True(t, s.IsComplete())
	assert.True(t, res.Completed)
	assert.Equal(t, domain.PhaseWrapUp, s.Phase())

	assert.Len(t, s.Transcript(), 6)
	assert.Equal(t, 2, s.Record().Behavior.MessagesPerPhase[domain.PhaseBackground])
	assert.Equal(t, 1, s.Record().Behavior.MessagesPerPhase[domain.PhaseCoreQuestions])
}

func TestProcessTurn_FallbackAppendsExactlyOneReply(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewTurnProcessor(&testutil.StubCollaborator{}, zap.New(core))
	s := newTestSession(t, testutil.NewTestStudy("Fallback"))

	before := len(s.Transcript())
	res, err := p.ProcessTurn(context.Background(), s, "hello", false)
	require.NoError(t, err)

	transcript := s.Transcript()
	require.Len(t, transcript, before+2)
	assert.Equal(t, domain.RoleParticipant, transcript[before].Role)
	assert.Equal(t, domain.RoleAI, transcript[before+1].Role)
	assert.Equal(t, intelligence.FallbackTurnMessage, transcript[before+1].Content)
	assert.True(t, res.Fallback)
	assert.Equal(t, domain.PhaseBackground, s.Phase())
	assert.False(t, s.IsComplete())

	entries := logs.FilterMessage("turn generation failed, using fallback reply").All()
	require.Len(t, entries, 1)
	assert.Equal(t, s.ID(), entries[0].ContextMap()["session_id"])
}

func TestProcessTurn_TerminalStateIsSticky(t *testing.T) {
	collab := &testutil.StubCollaborator{Turn: func(intelligence.TurnContext) intelligence.Outcome[intelligence.TurnResponse] {
		return intelligence.Success(intelligence.TurnResponse{
			Message:           "bye",
			ShouldConclude:    true,
			QuestionAddressed: testutil.Ptr(1),
			ProfileUpdates: []intelligence.ProfileUpdate{
				{FieldID: "tenure", Value: testutil.Ptr("5+ years"), Status: domain.FieldExtracted},
			},
		})
	}}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Sticky"))

	_, err := p.ProcessTurn(context.Background(), s, "first", false)
	require.NoError(t, err)
	require.True(t, s.IsComplete())

	profileBefore := *s.Profile()
	progressBefore := *s.Progress()
	transcriptBefore := s.Transcript()

	_, err = p.ProcessTurn(context.Background(), s, "second", false)
	assert.ErrorIs(t, err, ErrSessionComplete)
	assert.Equal(t, int32(1), collab.TurnCalls.Load(), "no collaborator call after completion")

	if diff := cmp.Diff(profileBefore, *s.Profile()); diff != "" {
		t.Errorf("profile changed after completion (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(progressBefore, *s.Progress()); diff != "" {
		t.Errorf("progress changed after completion (-before +after):\n%s", diff)
	}
	assert.Equal(t, transcriptBefore, s.Transcript())

	_, err = p.Greet(context.Background(), s)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestProcessTurn_UnknownFieldIgnored(t *testing.T) {
	collab := &testutil.StubCollaborator{Turn: testutil.ScriptedTurns(intelligence.TurnResponse{
		Message: "ok",
		ProfileUpdates: []intelligence.ProfileUpdate{
			{FieldID: "salary", Value: testutil.Ptr("lots"), Status: domain.FieldExtracted},
		},
	})}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Unknown field"))
	idsBefore := fieldIDs(s.Profile())

	res, err := p.ProcessTurn(context.Background(), s, "I earn lots", false)
	require.NoError(t, err)

	assert.Equal(t, idsBefore, fieldIDs(s.Profile()))
	assert.Equal(t, []string{"salary"}, res.IgnoredFields)
	assert.Empty(t, res.AppliedFields)
	for _, f := range s.Profile().Fields {
		assert.Equal(t, domain.FieldPending, f.Status)
	}
	assert.Empty(t, s.Profile().RawContext, "no applied update, no background context")
}

func fieldIDs(p *domain.ParticipantProfile) []string {
	var ids []string
	for _, f := range p.Fields {
		ids = append(ids, f.FieldID)
	}
	return ids
}

func TestProcessTurn_CounterKeyedByArrivalPhase(t *testing.T) {
	collab := &testutil.StubCollaborator{Turn: testutil.ScriptedTurns(
		intelligence.TurnResponse{Message: "a", PhaseTransition: testutil.Ptr(domain.PhaseExploration)},
		intelligence.TurnResponse{Message: "b", PhaseTransition: testutil.Ptr(domain.PhaseBackground)},
	)}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Counters"))

	_, err := p.ProcessTurn(context.Background(), s, "one", false)
	require.NoError(t, err)
	_, err = p.ProcessTurn(context.Background(), s, "two", false)
	require.NoError(t, err)

	behavior := s.Record().Behavior
	assert.Equal(t, 1, behavior.MessagesPerPhase[domain.PhaseBackground])
	assert.Equal(t, 1, behavior.MessagesPerPhase[domain.PhaseExploration])
	assert.Equal(t, domain.PhaseBackground, s.Phase(), "regression is accepted")
	assert.Greater(t, behavior.TimePerTopic[domain.PhaseBackground], 0.0)
}

func TestProcessTurn_RawContextOnlyInBackground(t *testing.T) {
	update := []intelligence.ProfileUpdate{{FieldID: "tenure", Value: nil, Status: domain.FieldVague}}
	collab := &testutil.StubCollaborator{Turn: testutil.ScriptedTurns(
		intelligence.TurnResponse{Message: "a", ProfileUpdates: update, PhaseTransition: testutil.Ptr(domain.PhaseCoreQuestions)},
		intelligence.TurnResponse{Message: "b", ProfileUpdates: update},
	)}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Context"))

	_, err := p.ProcessTurn(context.Background(), s, "a while", false)
	require.NoError(t, err)
	_, err = p.ProcessTurn(context.Background(), s, "not sure", false)
	require.NoError(t, err)

	assert.Equal(t, "a while", s.Profile().RawContext)
	tenure, _ := s.Profile().Field("tenure")
	assert.Equal(t, domain.FieldVague, tenure.Status)
	assert.Nil(t, tenure.Value)
}

func TestProcessTurn_QuestionMarking(t *testing.T) {
	collab := &testutil.StubCollaborator{Turn: testutil.ScriptedTurns(
		intelligence.TurnResponse{Message: "a", QuestionAddressed: testutil.Ptr(2)},
		intelligence.TurnResponse{Message: "b", QuestionAddressed: testutil.Ptr(2)},
		intelligence.TurnResponse{Message: "c", QuestionAddressed: testutil.Ptr(7)},
		intelligence.TurnResponse{Message: "d", QuestionAddressed: testutil.Ptr(1), PhaseTransition: testutil.Ptr(domain.PhaseWrapUp)},
	)}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Questions"))
	ctx := context.Background()

	sizes := []int{}
	for _, msg := range []string{"one", "two", "three", "four"} {
		_, err := p.ProcessTurn(ctx, s, msg, false)
		require.NoError(t, err)
		sizes = append(sizes, len(s.Progress().QuestionsAsked))
	}

	assert.Equal(t, []int{1, 1, 1, 2}, sizes)
	assert.Equal(t, []int{1, 2}, s.Progress().QuestionsAsked)
	assert.True(t, s.IsComplete(), "explicit transition to wrap-up completes")
}

func TestProcessTurn_InputLimits(t *testing.T) {
	var seen intelligence.TurnContext
	collab := &testutil.StubCollaborator{Turn: func(tc intelligence.TurnContext) intelligence.Outcome[intelligence.TurnResponse] {
		seen = tc
		return intelligence.Success(intelligence.TurnResponse{Message: "go on"})
	}}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Limits"))
	ctx := context.Background()

	_, err := p.ProcessTurn(ctx, s, "   ", false)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Transcript())

	long := strings.Repeat("é", MaxMessageChars+50)
	res, err := p.ProcessTurn(ctx, s, long, true)
	require.NoError(t, err)
	assert.Len(t, []rune(res.Participant.Content), MaxMessageChars)
	assert.True(t, res.Participant.Voice)

	for i := 0; i < 15; i++ {
		_, err := p.ProcessTurn(ctx, s, fmt.Sprintf("message %d", i), false)
		require.NoError(t, err)
	}
	require.Len(t, seen.Window, TranscriptWindow)
	assert.Equal(t, "message 14", seen.Window[len(seen.Window)-1].Content)
	assert.Equal(t, s.Study(), seen.Study)
}

func TestProcessTurn_BehaviorEnrichment(t *testing.T) {
	collab := &testutil.StubCollaborator{Turn: testutil.ScriptedTurns(
		intelligence.TurnResponse{Message: "a", TopicsExplored: []string{"tools", "meetings"}},
		intelligence.TurnResponse{Message: "b", TopicsExplored: []string{"tools"}, Contradiction: "said meetings were rare, then daily"},
	)}
	p := newProcessor(collab)
	s := newTestSession(t, testutil.NewTestStudy("Behavior"))

	for _, msg := range []string{"one", "two"} {
		_, err := p.ProcessTurn(context.Background(), s, msg, false)
		require.NoError(t, err)
	}

	b := s.Record().Behavior
	assert.Equal(t, []string{"tools", "meetings"}, b.ExploredTopics)
	assert.Equal(t, []string{"said meetings were rare, then daily"}, b.Contradictions)
}

func TestGreet(t *testing.T) {
	t.Run("collaborator greeting", func(t *testing.T) {
		collab := &testutil.StubCollaborator{Greeting: func(*domain.StudyConfig) intelligence.Outcome[string] {
			return intelligence.Success("Welcome!")
		}}
		p := newProcessor(collab)
		s := newTestSession(t, testutil.NewTestStudy("Greeting"))

		msg, err := p.Greet(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, "Welcome!", msg.Content)
		assert.Equal(t, domain.RoleAI, msg.Role)
		assert.Empty(t, s.Record().Behavior.MessagesPerPhase, "greeting is not a participant turn")

		_, err = p.Greet(context.Background(), s)
		assert.ErrorIs(t, err, ErrAlreadyGreeted)
	})

	t.Run("template fallback", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		p := NewTurnProcessor(&testutil.StubCollaborator{}, zap.New(core))
		study := testutil.NewTestStudy("Greeting fallback")
		s := newTestSession(t, study)

		msg, err := p.Greet(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, intelligence.DeterministicGreeting(study), msg.Content)
		assert.Equal(t, 1, logs.Len())
	})
}

func TestEndEarly(t *testing.T) {
	p := newProcessor(&testutil.StubCollaborator{})
	s := newTestSession(t, testutil.NewTestStudy("Early exit"))

	assert.True(t, p.EndEarly(s))
	assert.True(t, s.IsComplete())
	assert.Equal(t, domain.PhaseWrapUp, s.Phase())
	assert.Equal(t, []string{"role"}, s.Profile().PendingRequired(s.Study().ProfileSchema),
		"required fields may remain pending")

	assert.False(t, p.EndEarly(s))
	_, err := p.ProcessTurn(context.Background(), s, "wait", false)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestProcessTurn_ConcurrentSessionsAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)

	collab := &testutil.StubCollaborator{Turn: func(tc intelligence.TurnContext) intelligence.Outcome[intelligence.TurnResponse] {
		next := len(tc.Progress.QuestionsAsked)
		return intelligence.Success(intelligence.TurnResponse{
			Message:           "next",
			QuestionAddressed: &next,
			ProfileUpdates: []intelligence.ProfileUpdate{
				{FieldID: "role", Value: testutil.Ptr(tc.Window[len(tc.Window)-1].Content), Status: domain.FieldExtracted},
			},
		})
	}}
	p := NewTurnProcessor(collab, nil)
	study := testutil.NewTestStudy("Concurrent")

	const sessions = 16
	results := make([]*Session, sessions)
	errs := make([]error, sessions)
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := NewSession(study, fmt.Sprintf("p-%d", i), sessionStart)
			if err != nil {
				errs[i] = err
				return
			}
			for turn := 0; turn < 3; turn++ {
				if _, err := p.ProcessTurn(context.Background(), s, fmt.Sprintf("s%d-t%d", i, turn), false); err != nil {
					errs[i] = err
					return
				}
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, []int{0, 1, 2}, s.Progress().QuestionsAsked)
		assert.Len(t, s.Transcript(), 6)
		role, _ := s.Profile().Field("role")
		assert.Equal(t, fmt.Sprintf("s%d-t2", i), *role.Value)
	}
}
