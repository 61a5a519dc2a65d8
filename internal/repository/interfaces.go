package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/elicit/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type StudyRepo interface {
	Create(ctx context.Context, s *domain.StudyConfig) error
	GetByID(ctx context.Context, id string) (*domain.StudyConfig, error)
	List(ctx context.Context) ([]*domain.StudyConfig, error)
	Update(ctx context.Context, s *domain.StudyConfig) error
	// RecordCompletion increments the study's interview count and locks it
	// for edits. The counter is advisory: concurrent completions may race.
	RecordCompletion(ctx context.Context, id string) error
}

type InterviewRepo interface {
	// Save writes a record exactly once; a second save of the same session
	// fails with ErrAlreadyExists.
	Save(ctx context.Context, r *domain.SessionRecord) error
	GetByID(ctx context.Context, studyID, sessionID string) (*domain.SessionRecord, error)
	ListIDs(ctx context.Context, studyID string) ([]string, error)
}

type SynthesisRepo interface {
	Save(ctx context.Context, agg *domain.AggregateSynthesisResult) error
	Get(ctx context.Context, studyID string) (*domain.AggregateSynthesisResult, error)
}
