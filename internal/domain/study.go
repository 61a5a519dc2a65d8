package domain

import (
	"fmt"
	"regexp"
	"time"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateIdentifier checks that id is 1-64 characters of letters, digits,
// underscores or hyphens. Study and session ids are used verbatim in storage keys.
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("%s id %q must be 1-64 letters, digits, '_' or '-'", kind, id)
	}
	return nil
}

// ProfileField is one researcher-defined datum to collect from a participant.
type ProfileField struct {
	ID             string   `json:"id" yaml:"id"`
	Label          string   `json:"label" yaml:"label"`
	ExtractionHint string   `json:"extraction_hint,omitempty" yaml:"extraction_hint,omitempty"`
	Required       bool     `json:"required" yaml:"required"`
	Options        []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Lineage records where a generated study came from.
type Lineage struct {
	ParentID      string `json:"parent_id" yaml:"parent_id"`
	ParentName    string `json:"parent_name" yaml:"parent_name"`
	GeneratedFrom string `json:"generated_from" yaml:"generated_from"`
}

// GeneratedFromSynthesis marks a study drafted from an aggregate synthesis.
const GeneratedFromSynthesis = "synthesis"

// StudyConfig is a researcher-authored study. It is treated as immutable
// while sessions run against it.
type StudyConfig struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	ResearchQuestion string         `json:"research_question,omitempty"`
	CoreQuestions    []string       `json:"core_questions"`
	TopicAreas       []string       `json:"topic_areas"`
	ProfileSchema    []ProfileField `json:"profile_schema"`
	Mode             BehaviorMode   `json:"mode"`
	ConsentText      string         `json:"consent_text"`
	Lineage          *Lineage       `json:"lineage,omitempty"`

	// Advisory metadata; see StudyRepo.RecordCompletion.
	InterviewCount int  `json:"interview_count"`
	Locked         bool `json:"locked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate returns every structural problem with the study.
func (s *StudyConfig) Validate() []error {
	var errs []error

	if err := ValidateIdentifier("study", s.ID); err != nil {
		errs = append(errs, err)
	}
	if s.Name == "" {
		errs = append(errs, fmt.Errorf("study name is required"))
	}
	if len(s.CoreQuestions) == 0 {
		errs = append(errs, fmt.Errorf("at least one core question is required"))
	}
	for i, q := range s.CoreQuestions {
		if q == "" {
			errs = append(errs, fmt.Errorf("core_questions[%d] is empty", i))
		}
	}
	if s.Mode != "" && !ValidBehaviorModes[string(s.Mode)] {
		errs = append(errs, fmt.Errorf("mode: invalid value %q (expected structured, standard or exploratory)", s.Mode))
	}

	seen := make(map[string]bool, len(s.ProfileSchema))
	for i, f := range s.ProfileSchema {
		if f.ID == "" {
			errs = append(errs, fmt.Errorf("profile_schema[%d].id is required", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("profile_schema[%d].id %q is duplicated", i, f.ID))
		}
		seen[f.ID] = true
		if f.Label == "" {
			errs = append(errs, fmt.Errorf("profile_schema[%d].label is required", i))
		}
	}

	return errs
}

// FirstTopic returns the first topic area, or "" if there is none.
func (s *StudyConfig) FirstTopic() string {
	if len(s.TopicAreas) == 0 {
		return ""
	}
	return s.TopicAreas[0]
}

// HasField reports whether the schema declares a field with the given id.
func (s *StudyConfig) HasField(id string) bool {
	for _, f := range s.ProfileSchema {
		if f.ID == id {
			return true
		}
	}
	return false
}
