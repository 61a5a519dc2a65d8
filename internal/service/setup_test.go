package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/interview"
	"github.com/alexanderramin/elicit/internal/kv"
	"github.com/alexanderramin/elicit/internal/linktoken"
	"github.com/alexanderramin/elicit/internal/repository"
	"github.com/alexanderramin/elicit/internal/testutil"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected write failure")

var clockStart = time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC)

// testEnv wires services over an in-memory store wrapped in a FailingStore.
// Seed data through base so it does not count toward FailOn.
type testEnv struct {
	base       kv.Store
	store      *testutil.FailingStore
	studies    repository.StudyRepo
	interviews repository.InterviewRepo
	syntheses  repository.SynthesisRepo
	links      *linktoken.Signer
	collab     *testutil.StubCollaborator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := testutil.NewTestStore(t)
	store := &testutil.FailingStore{Store: base, Err: errInjected}
	links, err := linktoken.NewSigner("test-secret")
	require.NoError(t, err)
	return &testEnv{
		base:       base,
		store:      store,
		studies:    repository.NewKVStudyRepo(store),
		interviews: repository.NewKVInterviewRepo(store),
		syntheses:  repository.NewKVSynthesisRepo(store),
		links:      links,
		collab:     &testutil.StubCollaborator{},
	}
}

func (e *testEnv) seedStudy(t *testing.T, name string, opts ...testutil.StudyOption) *domain.StudyConfig {
	t.Helper()
	study := testutil.NewTestStudy(name, opts...)
	require.NoError(t, repository.NewKVStudyRepo(e.base).Create(context.Background(), study))
	return study
}

func (e *testEnv) link(t *testing.T, studyID string) string {
	t.Helper()
	token, _, err := e.links.Issue(studyID, time.Hour)
	require.NoError(t, err)
	return token
}

// stepClock returns a clock that advances one minute per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	next := clockStart
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func (e *testEnv) interviewService() *interviewService {
	svc := NewInterviewService(e.studies, e.interviews, e.store, e.links, e.collab, nil).(*interviewService)
	svc.now = stepClock()
	return svc
}

func (e *testEnv) synthesisService() *synthesisService {
	return NewSynthesisService(e.studies, e.interviews, e.syntheses, e.collab, nil).(*synthesisService)
}

// runSession starts a session from a fresh link, answers once and ends it.
func (e *testEnv) runSession(t *testing.T, svc InterviewService, studyID string) (*interview.Session, string) {
	t.Helper()
	ctx := context.Background()
	token := e.link(t, studyID)
	sess, err := svc.Start(ctx, token)
	require.NoError(t, err)
	_, err = svc.Turn(ctx, sess, "I lead a small support team.", false)
	require.NoError(t, err)
	require.True(t, svc.EndEarly(ctx, sess))
	return sess, token
}
