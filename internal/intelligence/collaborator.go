package intelligence

import (
	"context"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/llm"
)

// Outcome is the result of a collaborator call: either a value or the reason
// the call failed. Callers decide the fallback; a failure is never fatal.
type Outcome[T any] struct {
	value T
	err   error
}

// Success wraps a usable collaborator result.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failure wraps the reason a collaborator call produced nothing usable.
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = llm.ErrInvalidOutput
	}
	return Outcome[T]{err: err}
}

// OK reports whether the outcome carries a value.
func (o Outcome[T]) OK() bool { return o.err == nil }

// Err returns the failure reason, or nil on success.
func (o Outcome[T]) Err() error { return o.err }

// Get returns the value and failure reason.
func (o Outcome[T]) Get() (T, error) { return o.value, o.err }

// Or returns the value on success and fallback otherwise.
func (o Outcome[T]) Or(fallback T) T {
	if o.err != nil {
		return fallback
	}
	return o.value
}

// TurnContext is everything the collaborator sees for one interview turn.
type TurnContext struct {
	Study    *domain.StudyConfig
	Profile  *domain.ParticipantProfile
	Progress *domain.QuestionProgress
	Context  string                    // accumulated background narrative
	Window   []domain.InterviewMessage // most recent messages, oldest first
}

// ProfileUpdate is a field extraction declared by the collaborator.
type ProfileUpdate struct {
	FieldID string
	Value   *string
	Status  domain.FieldStatus
}

// TurnResponse is the validated, typed form of a collaborator turn. Optional
// parts that failed validation are nil/empty and named in Dropped.
type TurnResponse struct {
	Message           string
	QuestionAddressed *int
	PhaseTransition   *domain.InterviewPhase
	ProfileUpdates    []ProfileUpdate
	ShouldConclude    bool
	TopicsExplored    []string
	Contradiction     string
	Dropped           []string
}

// SessionInput is the material for a per-session synthesis.
type SessionInput struct {
	Study      *domain.StudyConfig
	Transcript []domain.InterviewMessage
	Behavior   *domain.BehaviorData
	Profile    *domain.ParticipantProfile
}

// FollowupProposal is the collaborator-authored part of a follow-up study.
type FollowupProposal struct {
	Name             string   `json:"name"`
	ResearchQuestion string   `json:"researchQuestion"`
	CoreQuestions    []string `json:"coreQuestions"`
}

// InterviewCollaborator is the external AI capability the interview core
// depends on. Every operation may fail; none returns a Go error.
type InterviewCollaborator interface {
	GenerateTurn(ctx context.Context, tc TurnContext) Outcome[TurnResponse]
	GenerateGreeting(ctx context.Context, study *domain.StudyConfig) Outcome[string]
	SynthesizeSession(ctx context.Context, in SessionInput) Outcome[domain.SynthesisResult]
	SynthesizeAggregate(ctx context.Context, study *domain.StudyConfig, results []domain.SynthesisResult) Outcome[domain.AggregateSynthesisResult]
	GenerateFollowup(ctx context.Context, parent *domain.StudyConfig, agg *domain.AggregateSynthesisResult) Outcome[FollowupProposal]
}

// DisabledCollaborator fails every call, so every caller takes its
// deterministic fallback. Wired when no model is configured.
type DisabledCollaborator struct{}

func (DisabledCollaborator) GenerateTurn(context.Context, TurnContext) Outcome[TurnResponse] {
	return Failure[TurnResponse](llm.ErrDisabled)
}

func (DisabledCollaborator) GenerateGreeting(context.Context, *domain.StudyConfig) Outcome[string] {
	return Failure[string](llm.ErrDisabled)
}

func (DisabledCollaborator) SynthesizeSession(context.Context, SessionInput) Outcome[domain.SynthesisResult] {
	return Failure[domain.SynthesisResult](llm.ErrDisabled)
}

func (DisabledCollaborator) SynthesizeAggregate(context.Context, *domain.StudyConfig, []domain.SynthesisResult) Outcome[domain.AggregateSynthesisResult] {
	return Failure[domain.AggregateSynthesisResult](llm.ErrDisabled)
}

func (DisabledCollaborator) GenerateFollowup(context.Context, *domain.StudyConfig, *domain.AggregateSynthesisResult) Outcome[FollowupProposal] {
	return Failure[FollowupProposal](llm.ErrDisabled)
}
