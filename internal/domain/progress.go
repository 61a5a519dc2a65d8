package domain

import "sort"

// QuestionProgress is the interview's phase state machine. It starts in the
// background phase and is terminal once IsComplete is set, which always
// coincides with the wrap-up phase.
//
// Transitions are permissive: any phase may follow any other, because the
// conversational collaborator owns pacing. The only guard is terminality.
type QuestionProgress struct {
	QuestionsAsked []int          `json:"questions_asked"`
	TotalQuestions int            `json:"total_questions"`
	CurrentPhase   InterviewPhase `json:"current_phase"`
	IsComplete     bool           `json:"is_complete"`
}

// NewQuestionProgress returns progress in the initial background phase.
func NewQuestionProgress(totalQuestions int) *QuestionProgress {
	return &QuestionProgress{
		QuestionsAsked: []int{},
		TotalQuestions: totalQuestions,
		CurrentPhase:   PhaseBackground,
	}
}

// TransitionTo moves to target. Unknown phases and transitions after
// completion are ignored; the return value reports whether state changed.
// Reaching wrap-up completes the session.
func (p *QuestionProgress) TransitionTo(target InterviewPhase) bool {
	if p.IsComplete || !ValidPhase(target) {
		return false
	}
	if target == PhaseWrapUp {
		p.Complete()
		return true
	}
	if p.CurrentPhase == target {
		return false
	}
	p.CurrentPhase = target
	return true
}

// MarkAddressed records a core question index. Re-marking is a no-op.
// Indices outside the study's question list are rejected.
func (p *QuestionProgress) MarkAddressed(index int) bool {
	if p.IsComplete || index < 0 || index >= p.TotalQuestions {
		return false
	}
	if p.Addressed(index) {
		return false
	}
	p.QuestionsAsked = append(p.QuestionsAsked, index)
	sort.Ints(p.QuestionsAsked)
	return true
}

// Addressed reports whether index has been marked.
func (p *QuestionProgress) Addressed(index int) bool {
	for _, q := range p.QuestionsAsked {
		if q == index {
			return true
		}
	}
	return false
}

// Complete forces the terminal state. Both a collaborator conclusion and a
// participant's early exit land here.
func (p *QuestionProgress) Complete() {
	p.IsComplete = true
	p.CurrentPhase = PhaseWrapUp
}

// Remaining returns core question indices not yet addressed, ascending.
func (p *QuestionProgress) Remaining() []int {
	var out []int
	for i := 0; i < p.TotalQuestions; i++ {
		if !p.Addressed(i) {
			out = append(out, i)
		}
	}
	return out
}
