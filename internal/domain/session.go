package domain

import (
	"fmt"
	"time"
)

type InterviewMessage struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Voice     bool        `json:"voice,omitempty"`
}

type AudioPreference struct {
	Mode     AudioMode `json:"mode"`
	ChosenAt time.Time `json:"chosen_at"`
}

// BehaviorData is derived from turn processing and never edited directly.
type BehaviorData struct {
	MessagesPerPhase map[InterviewPhase]int     `json:"messages_per_phase"`
	TimePerTopic     map[InterviewPhase]float64 `json:"time_per_topic"` // seconds
	ExploredTopics   []string                   `json:"explored_topics"`
	Contradictions   []string                   `json:"contradictions"`
	AudioPreference  *AudioPreference           `json:"audio_preference,omitempty"`
}

func NewBehaviorData() *BehaviorData {
	return &BehaviorData{
		MessagesPerPhase: map[InterviewPhase]int{},
		TimePerTopic:     map[InterviewPhase]float64{},
		ExploredTopics:   []string{},
		Contradictions:   []string{},
	}
}

// RecordTurn counts one participant turn against phase and attributes
// elapsed time to it.
func (b *BehaviorData) RecordTurn(phase InterviewPhase, elapsed time.Duration) {
	b.MessagesPerPhase[phase]++
	if elapsed > 0 {
		b.TimePerTopic[phase] += elapsed.Seconds()
	}
}

// AddExploredTopic records topic once, keeping first-seen order.
func (b *BehaviorData) AddExploredTopic(topic string) {
	if topic == "" {
		return
	}
	for _, t := range b.ExploredTopics {
		if t == topic {
			return
		}
	}
	b.ExploredTopics = append(b.ExploredTopics, topic)
}

func (b *BehaviorData) AddContradiction(c string) {
	if c == "" {
		return
	}
	b.Contradictions = append(b.Contradictions, c)
}

// SessionRecord is the durable artifact of a completed session. It is written
// exactly once; CompletedAt and Status are assigned by the server at save time.
type SessionRecord struct {
	ID          string              `json:"id"`
	StudyID     string              `json:"study_id"`
	Participant string              `json:"participant_id,omitempty"`
	Profile     *ParticipantProfile `json:"profile"`
	Transcript  []InterviewMessage  `json:"transcript"`
	Progress    *QuestionProgress   `json:"progress"`
	Behavior    *BehaviorData       `json:"behavior"`
	Synthesis   *SynthesisResult    `json:"synthesis,omitempty"`
	Status      SessionStatus       `json:"status"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// AttachSynthesis sets the per-session synthesis. A synthesis is immutable
// once attached.
func (r *SessionRecord) AttachSynthesis(s *SynthesisResult) error {
	if s == nil {
		return fmt.Errorf("synthesis is nil")
	}
	if r.Synthesis != nil {
		return fmt.Errorf("session %s already has a synthesis", r.ID)
	}
	r.Synthesis = s
	return nil
}

// ValidateForSave checks the invariants a record must satisfy before it
// becomes durable.
func (r *SessionRecord) ValidateForSave() error {
	if err := ValidateIdentifier("session", r.ID); err != nil {
		return err
	}
	if err := ValidateIdentifier("study", r.StudyID); err != nil {
		return err
	}
	if len(r.Transcript) == 0 {
		return fmt.Errorf("transcript is empty")
	}
	if r.Profile == nil {
		return fmt.Errorf("profile is required")
	}
	return nil
}
