package intelligence

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
)

// FallbackTurnMessage is the neutral reply used when a turn cannot be
// generated. It acknowledges without steering, so the conversation continues.
const FallbackTurnMessage = "Thank you for sharing that. Could you tell me a little more about it?"

// PendingBottomLine marks a per-session synthesis that could not be generated.
const PendingBottomLine = "Synthesis pending"

// FallbackTurn is the turn used when the collaborator fails: no profile
// updates, no phase change, not concluding.
func FallbackTurn() TurnResponse {
	return TurnResponse{Message: FallbackTurnMessage}
}

// DeterministicGreeting builds an opening message from the study's name and
// first topic area.
func DeterministicGreeting(study *domain.StudyConfig) string {
	var b strings.Builder
	b.WriteString("Hello, and thank you for taking part")
	if study != nil && study.Name != "" {
		fmt.Fprintf(&b, " in our study on %s", study.Name)
	}
	b.WriteString(". ")
	topic := ""
	if study != nil {
		topic = study.FirstTopic()
	}
	if topic != "" {
		fmt.Fprintf(&b, "To start, could you tell me a little about yourself and your experience with %s?", topic)
	} else {
		b.WriteString("To start, could you tell me a little about yourself?")
	}
	return b.String()
}

// PlaceholderSessionSynthesis stands in for a per-session synthesis the
// collaborator could not produce.
func PlaceholderSessionSynthesis(now time.Time) domain.SynthesisResult {
	s := domain.SynthesisResult{
		BottomLine:  PendingBottomLine,
		Source:      "placeholder",
		GeneratedAt: now,
	}
	s.Normalize()
	return s
}

// PlaceholderAggregate stands in for an aggregate synthesis the collaborator
// could not produce, so callers always have something to render.
func PlaceholderAggregate(now time.Time) domain.AggregateSynthesisResult {
	a := domain.AggregateSynthesisResult{
		BottomLine:  "Aggregate synthesis could not be generated. Review the individual interview syntheses.",
		Source:      "placeholder",
		GeneratedAt: now,
	}
	a.Normalize()
	return a
}

// DeterministicFollowup templates a follow-up study from the aggregate's top
// non-blank key finding. Callers guarantee at least one exists.
func DeterministicFollowup(parent *domain.StudyConfig, agg *domain.AggregateSynthesisResult) FollowupProposal {
	finding := ""
	for _, f := range agg.KeyFindings {
		if f = strings.TrimRight(strings.TrimSpace(f), "."); f != "" {
			finding = f
			break
		}
	}
	name := "Follow-up study"
	if parent != nil && parent.Name != "" {
		name = "Follow-up: " + parent.Name
	}
	return FollowupProposal{
		Name:             name,
		ResearchQuestion: fmt.Sprintf("What explains the finding that %s?", lowerFirst(finding)),
		CoreQuestions: []string{
			fmt.Sprintf("Earlier interviews suggested that %s. How does that match your own experience?", lowerFirst(finding)),
			"Can you walk me through a recent situation where this came up?",
			"What would need to change for this to be different for you?",
		},
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if len(r) > 1 && r[1] >= 'A' && r[1] <= 'Z' {
		return s // acronym
	}
	r[0] = []rune(strings.ToLower(string(r[0])))[0]
	return string(r)
}
