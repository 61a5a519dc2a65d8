package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Convert transforms a validated StudyFile into a StudyConfig ready for
// persistence. Call ValidateStudyFile first; Convert assumes the file is valid.
// A study without an id gets a generated one.
func Convert(f *StudyFile) (*domain.StudyConfig, error) {
	now := time.Now().UTC()

	id := f.Study.ID
	if id == "" {
		id = uuid.New().String()
	}

	mode := domain.BehaviorMode(f.Study.Mode)
	if mode == "" {
		mode = domain.ModeStandard
	}

	s := &domain.StudyConfig{
		ID:               id,
		Name:             strings.TrimSpace(f.Study.Name),
		Description:      f.Study.Description,
		ResearchQuestion: f.Study.ResearchQuestion,
		CoreQuestions:    trimAll(f.Study.CoreQuestions),
		TopicAreas:       nonEmpty(f.Study.TopicAreas),
		ProfileSchema:    make([]domain.ProfileField, 0, len(f.Profile)),
		Mode:             mode,
		ConsentText:      f.Study.ConsentText,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, fi := range f.Profile {
		s.ProfileSchema = append(s.ProfileSchema, domain.ProfileField{
			ID:             fi.ID,
			Label:          fi.Label,
			ExtractionHint: fi.ExtractionHint,
			Required:       fi.Required,
			Options:        append([]string(nil), fi.Options...),
		})
	}
	if f.Lineage != nil {
		s.Lineage = &domain.Lineage{
			ParentID:      f.Lineage.ParentID,
			ParentName:    f.Lineage.ParentName,
			GeneratedFrom: f.Lineage.GeneratedFrom,
		}
	}

	if errs := s.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("converted study is invalid: %v", errs[0])
	}
	return s, nil
}

// FromStudy is the inverse of Convert. Counters and timestamps are not part
// of the file format.
func FromStudy(s *domain.StudyConfig) *StudyFile {
	f := &StudyFile{
		Study: StudyImport{
			ID:               s.ID,
			Name:             s.Name,
			Description:      s.Description,
			ResearchQuestion: s.ResearchQuestion,
			CoreQuestions:    s.CoreQuestions,
			TopicAreas:       s.TopicAreas,
			Mode:             string(s.Mode),
			ConsentText:      s.ConsentText,
		},
	}
	for _, pf := range s.ProfileSchema {
		f.Profile = append(f.Profile, FieldImport{
			ID:             pf.ID,
			Label:          pf.Label,
			ExtractionHint: pf.ExtractionHint,
			Required:       pf.Required,
			Options:        pf.Options,
		})
	}
	if s.Lineage != nil {
		f.Lineage = &LineageImport{
			ParentID:      s.Lineage.ParentID,
			ParentName:    s.Lineage.ParentName,
			GeneratedFrom: s.Lineage.GeneratedFrom,
		}
	}
	return f
}

// ExportDraft writes a study (typically a generated follow-up draft) as a
// study file that LoadStudyFile accepts.
func ExportDraft(w io.Writer, s *domain.StudyConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromStudy(s)); err != nil {
		return fmt.Errorf("encoding study file: %w", err)
	}
	return enc.Close()
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
