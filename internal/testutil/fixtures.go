package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
)

var testStudyIDCounter atomic.Int64

// Study options
type StudyOption func(*domain.StudyConfig)

func WithCoreQuestions(qs ...string) StudyOption {
	return func(s *domain.StudyConfig) {
		s.CoreQuestions = qs
	}
}

func WithTopicAreas(topics ...string) StudyOption {
	return func(s *domain.StudyConfig) {
		s.TopicAreas = topics
	}
}

func WithProfileSchema(fields ...domain.ProfileField) StudyOption {
	return func(s *domain.StudyConfig) {
		s.ProfileSchema = fields
	}
}

func WithMode(m domain.BehaviorMode) StudyOption {
	return func(s *domain.StudyConfig) {
		s.Mode = m
	}
}

func WithStudyID(id string) StudyOption {
	return func(s *domain.StudyConfig) {
		s.ID = id
	}
}

func WithLocked(count int) StudyOption {
	return func(s *domain.StudyConfig) {
		s.Locked = true
		s.InterviewCount = count
	}
}

func defaultStudyID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('-')
		}
		if b.Len() >= 40 {
			break
		}
	}
	n := testStudyIDCounter.Add(1)
	return fmt.Sprintf("%s-%02d", strings.Trim(b.String(), "-"), n)
}

// NewTestStudy returns a usable study with three core questions and two
// profile fields, "role" (required) and "tenure".
func NewTestStudy(name string, opts ...StudyOption) *domain.StudyConfig {
	now := time.Now().UTC()
	s := &domain.StudyConfig{
		ID:               defaultStudyID(name),
		Name:             name,
		ResearchQuestion: "How do people experience " + strings.ToLower(name) + "?",
		CoreQuestions: []string{
			"Walk me through a typical day.",
			"What is the hardest part?",
			"What would you change?",
		},
		TopicAreas: []string{"daily routine", "pain points"},
		ProfileSchema: []domain.ProfileField{
			{ID: "role", Label: "Role", ExtractionHint: "job title or main activity", Required: true},
			{ID: "tenure", Label: "Tenure", Options: []string{"<1 year", "1-5 years", "5+ years"}},
		},
		Mode:        domain.ModeStandard,
		ConsentText: "Your answers are stored anonymously.",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestSynthesis returns a per-session synthesis with one theme.
func NewTestSynthesis(bottomLine string, theme string) *domain.SynthesisResult {
	s := &domain.SynthesisResult{
		Themes:      []domain.Theme{{Theme: theme, Evidence: []string{"quote about " + theme}, Frequency: 1}},
		KeyInsights: []string{"insight on " + theme},
		BottomLine:  bottomLine,
		Source:      "llm",
		GeneratedAt: time.Now().UTC(),
	}
	s.Normalize()
	return s
}
