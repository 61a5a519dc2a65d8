package domain

// InterviewPhase is a coarse stage of a session's conversation.
type InterviewPhase string

const (
	PhaseBackground    InterviewPhase = "background"
	PhaseCoreQuestions InterviewPhase = "core-questions"
	PhaseExploration   InterviewPhase = "exploration"
	PhaseFeedback      InterviewPhase = "feedback"
	PhaseWrapUp        InterviewPhase = "wrap-up"
)

// Phases lists every phase in conversational order.
var Phases = []InterviewPhase{
	PhaseBackground, PhaseCoreQuestions, PhaseExploration, PhaseFeedback, PhaseWrapUp,
}

// ValidPhase reports whether p is one of the known interview phases.
func ValidPhase(p InterviewPhase) bool {
	switch p {
	case PhaseBackground, PhaseCoreQuestions, PhaseExploration, PhaseFeedback, PhaseWrapUp:
		return true
	default:
		return false
	}
}

type FieldStatus string

const (
	FieldPending   FieldStatus = "pending"
	FieldExtracted FieldStatus = "extracted"
	FieldVague     FieldStatus = "vague"
	FieldRefused   FieldStatus = "refused"
)

// ValidUpdateStatus reports whether s may be declared by a profile update.
// Pending is the initial state only; the collaborator cannot move a field back to it.
func ValidUpdateStatus(s FieldStatus) bool {
	switch s {
	case FieldExtracted, FieldVague, FieldRefused:
		return true
	default:
		return false
	}
}

type MessageRole string

const (
	RoleParticipant MessageRole = "participant"
	RoleAI          MessageRole = "ai"
	RoleSystem      MessageRole = "system"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// BehaviorMode controls how tightly the interviewer sticks to the core questions.
type BehaviorMode string

const (
	ModeStructured  BehaviorMode = "structured"
	ModeStandard    BehaviorMode = "standard"
	ModeExploratory BehaviorMode = "exploratory"
)

// ValidBehaviorModes is the canonical set of accepted behavior mode strings.
var ValidBehaviorModes = map[string]bool{
	"structured": true, "standard": true, "exploratory": true,
}

type AudioMode string

const (
	AudioText  AudioMode = "text"
	AudioVoice AudioMode = "voice"
)
