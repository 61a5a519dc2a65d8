package interview

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/google/uuid"
)

// Session is one participant's in-memory interview state. Each session owns
// its profile, progress and transcript; nothing is shared between sessions.
// A Session is not safe for concurrent use: turns on one session must not
// overlap.
type Session struct {
	study        *domain.StudyConfig
	record       *domain.SessionRecord
	lastActivity time.Time
}

// NewSession starts a session for study. The study must be usable: valid
// identifiers, a non-empty core question list and unique field ids.
func NewSession(study *domain.StudyConfig, participantID string, now time.Time) (*Session, error) {
	if study == nil {
		return nil, fmt.Errorf("study is required")
	}
	if errs := study.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("study %s is not usable: %w", study.ID, errors.Join(errs...))
	}
	now = now.UTC()
	rec := &domain.SessionRecord{
		ID:          uuid.New().String(),
		StudyID:     study.ID,
		Participant: participantID,
		Profile:     domain.NewParticipantProfile(study.ProfileSchema, now),
		Transcript:  []domain.InterviewMessage{},
		Progress:    domain.NewQuestionProgress(len(study.CoreQuestions)),
		Behavior:    domain.NewBehaviorData(),
		Status:      domain.SessionInProgress,
		StartedAt:   now,
	}
	return &Session{study: study, record: rec, lastActivity: now}, nil
}

func (s *Session) ID() string { return s.record.ID }

func (s *Session) Study() *domain.StudyConfig { return s.study }

func (s *Session) Phase() domain.InterviewPhase { return s.record.Progress.CurrentPhase }

func (s *Session) IsComplete() bool { return s.record.Progress.IsComplete }

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() []domain.InterviewMessage {
	out := make([]domain.InterviewMessage, len(s.record.Transcript))
	copy(out, s.record.Transcript)
	return out
}

// Profile returns the live participant profile.
func (s *Session) Profile() *domain.ParticipantProfile { return s.record.Profile }

// Progress returns the live phase state.
func (s *Session) Progress() *domain.QuestionProgress { return s.record.Progress }

// Record returns the session's record as it would be submitted for saving.
// Status and CompletedAt are left for the server to assign.
func (s *Session) Record() *domain.SessionRecord { return s.record }

// SetAudioPreference records the participant's choice between text and voice.
func (s *Session) SetAudioPreference(mode domain.AudioMode, now time.Time) error {
	if mode != domain.AudioText && mode != domain.AudioVoice {
		return fmt.Errorf("unknown audio mode %q", mode)
	}
	s.record.Behavior.AudioPreference = &domain.AudioPreference{Mode: mode, ChosenAt: now.UTC()}
	return nil
}

func (s *Session) appendMessage(role domain.MessageRole, content string, voice bool, now time.Time) domain.InterviewMessage {
	msg := domain.InterviewMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
		Voice:     voice,
	}
	s.record.Transcript = append(s.record.Transcript, msg)
	return msg
}

// elapsed returns the time since the last recorded activity and moves the
// marker to now.
func (s *Session) elapsed(now time.Time) time.Duration {
	d := now.Sub(s.lastActivity)
	s.lastActivity = now
	if d < 0 {
		return 0
	}
	return d
}
