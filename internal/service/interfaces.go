package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/interview"
	"github.com/alexanderramin/elicit/internal/linktoken"
)

var (
	// ErrValidation wraps every rejected input; the wrapped message names
	// the specific reason.
	ErrValidation = errors.New("validation failed")
	// ErrStudyMismatch rejects a record whose study differs from the study
	// its participant link was issued for.
	ErrStudyMismatch = errors.New("session does not belong to the linked study")
	// ErrStudyLocked rejects edits to a study that has completed interviews.
	ErrStudyLocked  = errors.New("study is locked")
	ErrInvalidToken = errors.New("invalid participant link")
)

// Links issues and verifies participant links.
type Links interface {
	Issue(studyID string, ttl time.Duration) (string, *linktoken.Claims, error)
	Verify(token string) (*linktoken.Claims, error)
}

// Pinger is the store availability probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StudyService interface {
	Create(ctx context.Context, s *domain.StudyConfig) error
	Import(ctx context.Context, path string) (*domain.StudyConfig, error)
	GetByID(ctx context.Context, id string) (*domain.StudyConfig, error)
	List(ctx context.Context) ([]*domain.StudyConfig, error)
	Update(ctx context.Context, s *domain.StudyConfig) error
	IssueLink(ctx context.Context, studyID string, ttl time.Duration) (*Link, error)
}

// Link is a participant link for one study.
type Link struct {
	Token         string
	StudyID       string
	ParticipantID string
	ExpiresAt     *time.Time
}

type InterviewService interface {
	// Start verifies the link and opens a greeted session for its study.
	Start(ctx context.Context, token string) (*interview.Session, error)
	Turn(ctx context.Context, s *interview.Session, text string, voice bool) (*interview.TurnResult, error)
	EndEarly(ctx context.Context, s *interview.Session) bool
	// Complete makes a finished session durable. Storage trouble is reported
	// through CompleteResult, not as an error.
	Complete(ctx context.Context, token string, rec *domain.SessionRecord) (*CompleteResult, error)
	GetByID(ctx context.Context, studyID, sessionID string) (*domain.SessionRecord, error)
	ListByStudy(ctx context.Context, studyID string) ([]*domain.SessionRecord, error)
}

// CompleteResult holds the outcome of completing a session.
type CompleteResult struct {
	Record             *domain.SessionRecord
	Persisted          bool
	NotPersistedReason string
	// CounterUpdated is false when the advisory study counter could not be
	// bumped; the record itself is still saved.
	CounterUpdated bool
}

type SynthesisService interface {
	// Aggregate synthesizes every completed session of the study and, when
	// save is set, keeps the result as the study's latest aggregate.
	Aggregate(ctx context.Context, studyID string, save bool) (*domain.AggregateSynthesisResult, error)
	Latest(ctx context.Context, studyID string) (*domain.AggregateSynthesisResult, error)
	// Followup drafts a follow-up study from the latest saved aggregate, or
	// from a fresh one when none is saved. The draft is not saved.
	Followup(ctx context.Context, studyID string) (*domain.StudyConfig, error)
}
