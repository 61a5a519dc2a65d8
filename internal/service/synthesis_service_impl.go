package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"github.com/alexanderramin/elicit/internal/repository"
	"github.com/alexanderramin/elicit/internal/synthesis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds parallel record reads against the store.
const maxConcurrentLoads = 8

type synthesisService struct {
	studies     repository.StudyRepo
	interviews  repository.InterviewRepo
	syntheses   repository.SynthesisRepo
	synthesizer *synthesis.AggregateSynthesizer
	followups   *synthesis.FollowupGenerator
	observer    UseCaseObserver
}

func NewSynthesisService(
	studies repository.StudyRepo,
	interviews repository.InterviewRepo,
	syntheses repository.SynthesisRepo,
	collaborator intelligence.InterviewCollaborator,
	logger *zap.Logger,
	observers ...UseCaseObserver,
) SynthesisService {
	return &synthesisService{
		studies:     studies,
		interviews:  interviews,
		syntheses:   syntheses,
		synthesizer: synthesis.NewAggregateSynthesizer(collaborator, logger),
		followups:   synthesis.NewFollowupGenerator(collaborator, logger),
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *synthesisService) Aggregate(ctx context.Context, studyID string, save bool) (agg *domain.AggregateSynthesisResult, err error) {
	fields := map[string]any{"study_id": studyID, "save": save}
	done := observe(ctx, s.observer, "aggregate-synthesis", fields)
	defer func() { done(err) }()

	study, err := s.studies.GetByID(ctx, studyID)
	if err != nil {
		return nil, err
	}
	records, err := loadRecords(ctx, s.interviews, studyID)
	if err != nil {
		return nil, err
	}
	fields["records"] = len(records)

	agg, err = s.synthesizer.Synthesize(ctx, study, records)
	if err != nil {
		return nil, err
	}
	fields["source"] = agg.Source

	if save {
		if err := s.syntheses.Save(ctx, agg); err != nil {
			return nil, fmt.Errorf("saving aggregate synthesis: %w", err)
		}
	}
	return agg, nil
}

func (s *synthesisService) Latest(ctx context.Context, studyID string) (*domain.AggregateSynthesisResult, error) {
	return s.syntheses.Get(ctx, studyID)
}

func (s *synthesisService) Followup(ctx context.Context, studyID string) (draft *domain.StudyConfig, err error) {
	done := observe(ctx, s.observer, "followup-draft", map[string]any{"study_id": studyID})
	defer func() { done(err) }()

	parent, err := s.studies.GetByID(ctx, studyID)
	if err != nil {
		return nil, err
	}
	agg, err := s.syntheses.Get(ctx, studyID)
	if errors.Is(err, repository.ErrNotFound) {
		agg, err = s.Aggregate(ctx, studyID, false)
	}
	if err != nil {
		return nil, err
	}
	return s.followups.Generate(ctx, parent, agg)
}

// loadRecords reads every indexed session of the study concurrently. Index
// entries whose record was never written are skipped.
func loadRecords(ctx context.Context, interviews repository.InterviewRepo, studyID string) ([]*domain.SessionRecord, error) {
	ids, err := interviews.ListIDs(ctx, studyID)
	if err != nil {
		return nil, err
	}

	loaded := make([]*domain.SessionRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := interviews.GetByID(gctx, studyID, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			loaded[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading sessions of %s: %w", studyID, err)
	}

	records := make([]*domain.SessionRecord, 0, len(loaded))
	for _, r := range loaded {
		if r != nil {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return completedBefore(records[i], records[j])
	})
	return records, nil
}

func completedBefore(a, b *domain.SessionRecord) bool {
	switch {
	case a.CompletedAt == nil:
		return b.CompletedAt != nil
	case b.CompletedAt == nil:
		return false
	default:
		return a.CompletedAt.Before(*b.CompletedAt)
	}
}
