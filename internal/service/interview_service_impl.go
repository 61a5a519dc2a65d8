package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/intelligence"
	"github.com/alexanderramin/elicit/internal/interview"
	"github.com/alexanderramin/elicit/internal/linktoken"
	"github.com/alexanderramin/elicit/internal/repository"
	"go.uber.org/zap"
)

type interviewService struct {
	studies      repository.StudyRepo
	interviews   repository.InterviewRepo
	store        Pinger
	links        Links
	collaborator intelligence.InterviewCollaborator
	processor    *interview.TurnProcessor
	logger       *zap.Logger
	observer     UseCaseObserver
	now          func() time.Time
}

func NewInterviewService(
	studies repository.StudyRepo,
	interviews repository.InterviewRepo,
	store Pinger,
	links Links,
	collaborator intelligence.InterviewCollaborator,
	logger *zap.Logger,
	observers ...UseCaseObserver,
) InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &interviewService{
		studies:      studies,
		interviews:   interviews,
		store:        store,
		links:        links,
		collaborator: collaborator,
		processor:    interview.NewTurnProcessor(collaborator, logger),
		logger:       logger.Named("completion"),
		observer:     useCaseObserverOrNoop(observers),
		now:          time.Now,
	}
}

func (s *interviewService) verify(token string) (*linktoken.Claims, error) {
	claims, err := s.links.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *interviewService) Start(ctx context.Context, token string) (sess *interview.Session, err error) {
	done := observe(ctx, s.observer, "start-interview", map[string]any{})
	defer func() { done(err) }()

	claims, err := s.verify(token)
	if err != nil {
		return nil, err
	}
	study, err := s.studies.GetByID(ctx, claims.StudyID)
	if err != nil {
		return nil, fmt.Errorf("loading study %s: %w", claims.StudyID, err)
	}
	sess, err = interview.NewSession(study, claims.ParticipantID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.processor.Greet(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *interviewService) Turn(ctx context.Context, sess *interview.Session, text string, voice bool) (*interview.TurnResult, error) {
	return s.processor.ProcessTurn(ctx, sess, text, voice)
}

func (s *interviewService) EndEarly(_ context.Context, sess *interview.Session) bool {
	return s.processor.EndEarly(sess)
}

// Complete validates rec against the participant link, stamps the server's
// status and completion time, attaches the session synthesis and writes the
// record once. The study counter update that follows is best effort.
func (s *interviewService) Complete(ctx context.Context, token string, rec *domain.SessionRecord) (res *CompleteResult, err error) {
	fields := map[string]any{}
	done := observe(ctx, s.observer, "complete-interview", fields)
	defer func() { done(err) }()

	claims, err := s.verify(token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: session record is required", ErrValidation)
	}
	fields["session_id"] = rec.ID
	fields["study_id"] = rec.StudyID
	if rec.StudyID != claims.StudyID {
		return nil, fmt.Errorf("%w: link is for study %q, session is for %q", ErrStudyMismatch, claims.StudyID, rec.StudyID)
	}
	if err := rec.ValidateForSave(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Work on a copy; the caller's record only changes when Complete returns
	// a result.
	out := *rec
	if rec.Progress != nil {
		progress := *rec.Progress
		progress.QuestionsAsked = append([]int(nil), rec.Progress.QuestionsAsked...)
		out.Progress = &progress
	}
	commit := func(res *CompleteResult) (*CompleteResult, error) {
		*rec = out
		res.Record = rec
		return res, nil
	}

	now := s.now().UTC()
	out.Status = domain.SessionCompleted
	out.CompletedAt = &now
	out.Participant = claims.ParticipantID
	if out.Progress != nil {
		out.Progress.Complete()
	}
	res = &CompleteResult{}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("store unavailable, session not persisted",
			zap.String("session_id", out.ID),
			zap.Error(err))
		res.NotPersistedReason = "storage unavailable"
		fields["persisted"] = false
		return commit(res)
	}

	study, err := s.studies.GetByID(ctx, out.StudyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown study %s", ErrValidation, out.StudyID)
		}
		return nil, err
	}

	// A caller-supplied synthesis is not trusted.
	out.Synthesis = nil
	synth := s.synthesize(ctx, study, &out, now)
	if err := out.AttachSynthesis(&synth); err != nil {
		return nil, err
	}

	if err := s.interviews.Save(ctx, &out); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Error("saving session failed, session not persisted",
			zap.String("session_id", out.ID),
			zap.Error(err))
		res.NotPersistedReason = "storage write failed"
		fields["persisted"] = false
		return commit(res)
	}
	res.Persisted = true
	fields["persisted"] = true

	if err := s.studies.RecordCompletion(ctx, out.StudyID); err != nil {
		s.logger.Warn("updating study interview count failed",
			zap.String("study_id", out.StudyID),
			zap.String("session_id", out.ID),
			zap.Error(err))
		return commit(res)
	}
	res.CounterUpdated = true
	return commit(res)
}

func (s *interviewService) synthesize(ctx context.Context, study *domain.StudyConfig, rec *domain.SessionRecord, now time.Time) domain.SynthesisResult {
	synth, err := s.collaborator.SynthesizeSession(ctx, intelligence.SessionInput{
		Study:      study,
		Transcript: rec.Transcript,
		Behavior:   rec.Behavior,
		Profile:    rec.Profile,
	}).Get()
	if err != nil {
		s.logger.Warn("session synthesis failed, using placeholder",
			zap.String("session_id", rec.ID),
			zap.Error(err))
		synth = intelligence.PlaceholderSessionSynthesis(now)
	}
	if synth.GeneratedAt.IsZero() {
		synth.GeneratedAt = now
	}
	synth.Normalize()
	return synth
}

func (s *interviewService) GetByID(ctx context.Context, studyID, sessionID string) (*domain.SessionRecord, error) {
	return s.interviews.GetByID(ctx, studyID, sessionID)
}

// ListByStudy returns the study's saved sessions, oldest completion first.
// Index entries without a record are skipped.
func (s *interviewService) ListByStudy(ctx context.Context, studyID string) ([]*domain.SessionRecord, error) {
	return loadRecords(ctx, s.interviews, studyID)
}
