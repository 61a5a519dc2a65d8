package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
)

// ErrNotScripted is the failure returned by StubCollaborator operations that
// have no func set.
var ErrNotScripted = errors.New("stub collaborator: operation not scripted")

type (
	TurnFunc      func(intelligence.TurnContext) intelligence.Outcome[intelligence.TurnResponse]
	GreetingFunc  func(*domain.StudyConfig) intelligence.Outcome[string]
	SessionFunc   func(intelligence.SessionInput) intelligence.Outcome[domain.SynthesisResult]
	AggregateFunc func(*domain.StudyConfig, []domain.SynthesisResult) intelligence.Outcome[domain.AggregateSynthesisResult]
	FollowupFunc  func(*domain.StudyConfig, *domain.AggregateSynthesisResult) intelligence.Outcome[intelligence.FollowupProposal]
)

// StubCollaborator is an InterviewCollaborator driven by per-operation funcs.
// Unset operations fail with ErrNotScripted, which exercises the fallbacks.
type StubCollaborator struct {
	Turn      TurnFunc
	Greeting  GreetingFunc
	Session   SessionFunc
	Aggregate AggregateFunc
	Followup  FollowupFunc

	TurnCalls      atomic.Int32
	AggregateCalls atomic.Int32
}

var _ intelligence.InterviewCollaborator = (*StubCollaborator)(nil)

func (s *StubCollaborator) GenerateTurn(_ context.Context, tc intelligence.TurnContext) intelligence.Outcome[intelligence.TurnResponse] {
	s.TurnCalls.Add(1)
	if s.Turn == nil {
		return intelligence.Failure[intelligence.TurnResponse](ErrNotScripted)
	}
	return s.Turn(tc)
}

func (s *StubCollaborator) GenerateGreeting(_ context.Context, study *domain.StudyConfig) intelligence.Outcome[string] {
	if s.Greeting == nil {
		return intelligence.Failure[string](ErrNotScripted)
	}
	return s.Greeting(study)
}

func (s *StubCollaborator) SynthesizeSession(_ context.Context, in intelligence.SessionInput) intelligence.Outcome[domain.SynthesisResult] {
	if s.Session == nil {
		return intelligence.Failure[domain.SynthesisResult](ErrNotScripted)
	}
	return s.Session(in)
}

func (s *StubCollaborator) SynthesizeAggregate(_ context.Context, study *domain.StudyConfig, results []domain.SynthesisResult) intelligence.Outcome[domain.AggregateSynthesisResult] {
	s.AggregateCalls.Add(1)
	if s.Aggregate == nil {
		return intelligence.Failure[domain.AggregateSynthesisResult](ErrNotScripted)
	}
	return s.Aggregate(study, results)
}

func (s *StubCollaborator) GenerateFollowup(_ context.Context, parent *domain.StudyConfig, agg *domain.AggregateSynthesisResult) intelligence.Outcome[intelligence.FollowupProposal] {
	if s.Followup == nil {
		return intelligence.Failure[intelligence.FollowupProposal](ErrNotScripted)
	}
	return s.Followup(parent, agg)
}

// ScriptedTurns replays responses in order, one per call. Calls past the end
// of the script fail with ErrNotScripted.
func ScriptedTurns(responses ...intelligence.TurnResponse) TurnFunc {
	var mu sync.Mutex
	next := 0
	return func(intelligence.TurnContext) intelligence.Outcome[intelligence.TurnResponse] {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(responses) {
			return intelligence.Failure[intelligence.TurnResponse](ErrNotScripted)
		}
		r := responses[next]
		next++
		return intelligence.Success(r)
	}
}

// Ptr returns a pointer to v, for optional response fields.
func Ptr[T any](v T) *T { return &v }
