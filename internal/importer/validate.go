package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/elicit/internal/domain"
)

// ValidateStudyFile checks the study file for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateStudyFile(f *StudyFile) []error {
	var errs []error

	errs = append(errs, validateStudy(&f.Study)...)
	errs = append(errs, validateProfile(f.Profile)...)
	errs = append(errs, validateLineage(f.Lineage)...)

	return errs
}

func validateStudy(s *StudyImport) []error {
	var errs []error

	if s.ID != "" {
		if err := domain.ValidateIdentifier("study", s.ID); err != nil {
			errs = append(errs, fmt.Errorf("study.id: %w", err))
		}
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, fmt.Errorf("study.name is required"))
	}
	if len(s.CoreQuestions) == 0 {
		errs = append(errs, fmt.Errorf("study.core_questions: at least one question is required"))
	}
	for i, q := range s.CoreQuestions {
		if strings.TrimSpace(q) == "" {
			errs = append(errs, fmt.Errorf("study.core_questions[%d] is empty", i))
		}
	}
	if s.Mode != "" && !domain.ValidBehaviorModes[s.Mode] {
		errs = append(errs, fmt.Errorf("study.mode: invalid value %q (expected structured, standard or exploratory)", s.Mode))
	}

	return errs
}

func validateProfile(fields []FieldImport) []error {
	var errs []error

	seen := make(map[string]bool)
	for i, f := range fields {
		prefix := fmt.Sprintf("profile_schema[%d]", i)

		if f.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if seen[f.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, f.ID))
		} else {
			seen[f.ID] = true
		}

		if f.Label == "" {
			errs = append(errs, fmt.Errorf("%s.label is required", prefix))
		}

		opts := make(map[string]bool)
		for j, o := range f.Options {
			if o == "" {
				errs = append(errs, fmt.Errorf("%s.options[%d] is empty", prefix, j))
			} else if opts[o] {
				errs = append(errs, fmt.Errorf("%s.options[%d]: duplicate option %q", prefix, j, o))
			}
			opts[o] = true
		}
	}

	return errs
}

func validateLineage(l *LineageImport) []error {
	if l == nil {
		return nil
	}
	var errs []error

	if l.ParentID == "" {
		errs = append(errs, fmt.Errorf("lineage.parent_id is required"))
	}
	if l.GeneratedFrom != "" && l.GeneratedFrom != domain.GeneratedFromSynthesis {
		errs = append(errs, fmt.Errorf("lineage.generated_from: invalid value %q", l.GeneratedFrom))
	}

	return errs
}
