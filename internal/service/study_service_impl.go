package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/importer"
	"github.com/alexanderramin/elicit/internal/repository"
	"github.com/google/uuid"
)

type studyService struct {
	studies  repository.StudyRepo
	links    Links
	observer UseCaseObserver
}

func NewStudyService(studies repository.StudyRepo, links Links, observers ...UseCaseObserver) StudyService {
	return &studyService{
		studies:  studies,
		links:    links,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *studyService) Create(ctx context.Context, study *domain.StudyConfig) (err error) {
	done := observe(ctx, s.observer, "create-study", map[string]any{"name": study.Name})
	defer func() { done(err) }()

	if study.ID == "" {
		study.ID = uuid.New().String()
	}
	if study.Mode == "" {
		study.Mode = domain.ModeStandard
	}
	if errs := study.Validate(); len(errs) > 0 {
		return formatValidationErrors(errs)
	}
	now := time.Now().UTC()
	study.CreatedAt = now
	study.UpdatedAt = now
	study.InterviewCount = 0
	study.Locked = false
	return s.studies.Create(ctx, study)
}

func (s *studyService) Import(ctx context.Context, path string) (*domain.StudyConfig, error) {
	f, err := importer.LoadStudyFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading study file: %w", err)
	}
	if errs := importer.ValidateStudyFile(f); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	study, err := importer.Convert(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.Create(ctx, study); err != nil {
		return nil, fmt.Errorf("creating study: %w", err)
	}
	return study, nil
}

func (s *studyService) GetByID(ctx context.Context, id string) (*domain.StudyConfig, error) {
	return s.studies.GetByID(ctx, id)
}

func (s *studyService) List(ctx context.Context) ([]*domain.StudyConfig, error) {
	return s.studies.List(ctx)
}

// Update replaces the researcher-authored parts of a study. Once an interview
// has completed, the questions sessions ran against are frozen.
func (s *studyService) Update(ctx context.Context, study *domain.StudyConfig) (err error) {
	done := observe(ctx, s.observer, "update-study", map[string]any{"study_id": study.ID})
	defer func() { done(err) }()

	existing, err := s.studies.GetByID(ctx, study.ID)
	if err != nil {
		return err
	}
	if existing.Locked {
		return fmt.Errorf("%w: %s has %d completed interviews", ErrStudyLocked, study.ID, existing.InterviewCount)
	}
	if errs := study.Validate(); len(errs) > 0 {
		return formatValidationErrors(errs)
	}
	study.InterviewCount = existing.InterviewCount
	study.Locked = existing.Locked
	study.CreatedAt = existing.CreatedAt
	study.UpdatedAt = time.Now().UTC()
	return s.studies.Update(ctx, study)
}

func (s *studyService) IssueLink(ctx context.Context, studyID string, ttl time.Duration) (link *Link, err error) {
	done := observe(ctx, s.observer, "issue-link", map[string]any{"study_id": studyID})
	defer func() { done(err) }()

	if _, err := s.studies.GetByID(ctx, studyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown study %s", ErrValidation, studyID)
		}
		return nil, err
	}
	token, claims, err := s.links.Issue(studyID, ttl)
	if err != nil {
		return nil, err
	}
	link = &Link{Token: token, StudyID: studyID, ParticipantID: claims.ParticipantID}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		link.ExpiresAt = &exp
	}
	return link, nil
}
