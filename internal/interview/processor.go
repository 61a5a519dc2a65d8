package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"go.uber.org/zap"
)

var (
	// ErrSessionComplete is returned for any turn attempted after the session
	// reached its terminal state. Nothing is appended or applied.
	ErrSessionComplete = errors.New("interview session is complete")
	// ErrEmptyMessage is returned for a blank participant message.
	ErrEmptyMessage = errors.New("participant message is empty")
	// ErrAlreadyGreeted is returned when Greet is called on a session that
	// already has messages.
	ErrAlreadyGreeted = errors.New("interview session already started")
)

// TurnResult describes what one participant turn changed.
type TurnResult struct {
	Participant    domain.InterviewMessage
	Reply          domain.InterviewMessage
	Fallback       bool
	AppliedFields  []string
	IgnoredFields  []string
	PhaseBefore    domain.InterviewPhase
	Phase          domain.InterviewPhase
	QuestionMarked *int
	Completed      bool
}

// TurnProcessor turns participant messages into interviewer replies and
// applies the collaborator's declared effects to a session. It holds no
// per-session state and may serve many sessions concurrently.
type TurnProcessor struct {
	collaborator intelligence.InterviewCollaborator
	logger       *zap.Logger
	now          func() time.Time
}

func NewTurnProcessor(collaborator intelligence.InterviewCollaborator, logger *zap.Logger) *TurnProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TurnProcessor{
		collaborator: collaborator,
		logger:       logger.Named("interview"),
		now:          time.Now,
	}
}

// Greet appends the interviewer's opening message. It does not count as a
// participant turn.
func (p *TurnProcessor) Greet(ctx context.Context, s *Session) (domain.InterviewMessage, error) {
	if s.IsComplete() {
		return domain.InterviewMessage{}, ErrSessionComplete
	}
	if len(s.record.Transcript) > 0 {
		return domain.InterviewMessage{}, ErrAlreadyGreeted
	}

	greeting, err := p.collaborator.GenerateGreeting(ctx, s.study).Get()
	if err != nil {
		p.logger.Warn("greeting generation failed, using template",
			zap.String("session_id", s.ID()),
			zap.String("study_id", s.study.ID),
			zap.Error(err))
		greeting = intelligence.DeterministicGreeting(s.study)
	}

	now := p.now()
	s.elapsed(now)
	return s.appendMessage(domain.RoleAI, Truncate(greeting, MaxMessageChars), false, now), nil
}

// ProcessTurn handles one participant message: it appends it, asks the
// collaborator for the reply, applies the declared profile updates, question
// marking and phase transition, then appends the reply. A failed or
// unparseable collaborator call degrades to a neutral fallback reply; it is
// never returned as an error.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, s *Session, text string, voice bool) (*TurnResult, error) {
	if s.IsComplete() {
		return nil, ErrSessionComplete
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	text = Truncate(text, MaxMessageChars)

	now := p.now()
	profile := s.record.Profile
	progress := s.record.Progress
	arrival := progress.CurrentPhase

	s.record.Behavior.RecordTurn(arrival, s.elapsed(now))
	result := &TurnResult{
		Participant: s.appendMessage(domain.RoleParticipant, text, voice, now),
		PhaseBefore: arrival,
	}

	resp, err := p.collaborator.GenerateTurn(ctx, intelligence.TurnContext{
		Study:    s.study,
		Profile:  profile,
		Progress: progress,
		Context:  profile.RawContext,
		Window:   Window(s.record.Transcript),
	}).Get()
	if err != nil {
		p.logger.Warn("turn generation failed, using fallback reply",
			zap.String("session_id", s.ID()),
			zap.String("phase", string(arrival)),
			zap.Error(err))
		resp = intelligence.FallbackTurn()
		result.Fallback = true
	} else if len(resp.Dropped) > 0 {
		p.logger.Debug("ignored invalid turn fields",
			zap.String("session_id", s.ID()),
			zap.Strings("fields", resp.Dropped))
	}

	for _, u := range resp.ProfileUpdates {
		if profile.ApplyUpdate(u.FieldID, u.Value, u.Status, now) {
			result.AppliedFields = append(result.AppliedFields, u.FieldID)
		} else {
			result.IgnoredFields = append(result.IgnoredFields, u.FieldID)
		}
	}
	if len(result.IgnoredFields) > 0 {
		p.logger.Debug("ignored updates for unknown profile fields",
			zap.String("session_id", s.ID()),
			zap.Strings("field_ids", result.IgnoredFields))
	}
	if arrival == domain.PhaseBackground && len(result.AppliedFields) > 0 {
		profile.AppendRawContext(text)
		profile.RawContext = truncateTail(profile.RawContext, MaxRawContextChars)
	}

	// Marked before the transition so a move to wrap-up in the same turn
	// does not discard it.
	if resp.QuestionAddressed != nil {
		idx := *resp.QuestionAddressed
		if progress.MarkAddressed(idx) {
			result.QuestionMarked = &idx
		} else if !progress.Addressed(idx) {
			p.logger.Debug("ignored out of range question index",
				zap.String("session_id", s.ID()),
				zap.Int("index", idx))
		}
	}
	if resp.PhaseTransition != nil {
		progress.TransitionTo(*resp.PhaseTransition)
	}

	for _, topic := range resp.TopicsExplored {
		s.record.Behavior.AddExploredTopic(topic)
	}
	s.record.Behavior.AddContradiction(resp.Contradiction)

	result.Reply = s.appendMessage(domain.RoleAI, Truncate(resp.Message, MaxMessageChars), false, p.now())

	if resp.ShouldConclude {
		progress.Complete()
	}
	result.Phase = progress.CurrentPhase
	result.Completed = progress.IsComplete
	return result, nil
}

// EndEarly forces the terminal state at the participant's request. Required
// profile fields may still be pending. It reports whether state changed.
func (p *TurnProcessor) EndEarly(s *Session) bool {
	if s.IsComplete() {
		return false
	}
	s.record.Progress.Complete()
	p.logger.Info("participant ended interview early",
		zap.String("session_id", s.ID()),
		zap.Int("questions_addressed", len(s.record.Progress.QuestionsAsked)),
		zap.Int("questions_total", s.record.Progress.TotalQuestions))
	return true
}
