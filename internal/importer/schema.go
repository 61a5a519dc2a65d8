package importer

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StudyFile is the researcher-authored study document. YAML is the native
// format; JSON files parse too since JSON is valid YAML.
type StudyFile struct {
	Study   StudyImport    `yaml:"study"`
	Profile []FieldImport  `yaml:"profile_schema,omitempty"`
	Lineage *LineageImport `yaml:"lineage,omitempty"`
}

// StudyImport defines the study-level fields in the import file.
type StudyImport struct {
	ID               string   `yaml:"id,omitempty"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description,omitempty"`
	ResearchQuestion string   `yaml:"research_question,omitempty"`
	CoreQuestions    []string `yaml:"core_questions"`
	TopicAreas       []string `yaml:"topic_areas,omitempty"`
	Mode             string   `yaml:"mode,omitempty"`
	ConsentText      string   `yaml:"consent_text,omitempty"`
}

// FieldImport defines one profile field to extract during interviews.
type FieldImport struct {
	ID             string   `yaml:"id"`
	Label          string   `yaml:"label"`
	ExtractionHint string   `yaml:"extraction_hint,omitempty"`
	Required       bool     `yaml:"required,omitempty"`
	Options        []string `yaml:"options,omitempty"`
}

// LineageImport records the parent of a generated follow-up study.
type LineageImport struct {
	ParentID      string `yaml:"parent_id"`
	ParentName    string `yaml:"parent_name"`
	GeneratedFrom string `yaml:"generated_from"`
}

// LoadStudyFile reads and parses a study file.
func LoadStudyFile(path string) (*StudyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStudyFile(data)
}

// ParseStudyFile parses a study document, rejecting unknown keys.
func ParseStudyFile(data []byte) (*StudyFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f StudyFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing study file: %w", err)
	}
	return &f, nil
}
