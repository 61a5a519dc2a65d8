package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
)

// FormatStudyList renders studies as a table, newest first as given.
func FormatStudyList(studies []*domain.StudyConfig, now time.Time) string {
	if len(studies) == 0 {
		return Dim("No studies yet. Import one with 'elicit study import <file>'.") + "\n"
	}

	rows := make([][]string, 0, len(studies))
	for _, s := range studies {
		rows = append(rows, []string{
			TruncID(s.ID),
			Bold(s.Name),
			string(s.Mode),
			fmt.Sprintf("%d", s.InterviewCount),
			lockBadge(s.Locked),
			RelativeDateFrom(s.CreatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "NAME", "MODE", "INTERVIEWS", "STATE", "CREATED"}, rows)
}

// FormatStudy renders the full configuration of one study.
func FormatStudy(s *domain.StudyConfig) string {
	var b strings.Builder

	b.WriteString(label("id", s.ID))
	b.WriteString(label("name", Bold(s.Name)))
	if s.ResearchQuestion != "" {
		b.WriteString(label("question", s.ResearchQuestion))
	}
	b.WriteString(label("mode", string(s.Mode)))
	b.WriteString(label("sessions", fmt.Sprintf("%d %s", s.InterviewCount, lockBadge(s.Locked))))
	if s.Lineage != nil {
		b.WriteString(label("parent", fmt.Sprintf("%s %s", s.Lineage.ParentName, TruncID(s.Lineage.ParentID))))
	}
	if s.Description != "" {
		b.WriteString("\n  " + StyleFg.Render(s.Description) + "\n")
	}

	b.WriteString("\n" + Header("Core questions") + "\n")
	for i, q := range s.CoreQuestions {
		b.WriteString(fmt.Sprintf("  %s %s\n", StyleDim.Render(fmt.Sprintf("%d.", i+1)), q))
	}

	b.WriteString("\n" + Header("Topic areas") + "\n")
	b.WriteString(bullets(s.TopicAreas))

	b.WriteString("\n" + Header("Profile schema") + "\n")
	if len(s.ProfileSchema) == 0 {
		b.WriteString("  " + Dim("none") + "\n")
	}
	for _, f := range s.ProfileSchema {
		req := ""
		if f.Required {
			req = StyleYellow.Render(" *")
		}
		line := fmt.Sprintf("  %s%s  %s", Bold(f.Label), req, Dim(f.ID))
		if len(f.Options) > 0 {
			line += Dim(" [" + strings.Join(f.Options, ", ") + "]")
		}
		b.WriteString(line + "\n")
	}

	return RenderBox("Study", b.String())
}

// FormatLink renders a freshly issued participant link.
func FormatLink(token, studyName string, expiresAt *time.Time) string {
	var b strings.Builder
	b.WriteString(StyleGreen.Render("Participant link issued for ") + Bold(studyName) + "\n\n")
	b.WriteString("  " + token + "\n\n")
	if expiresAt != nil {
		b.WriteString(label("expires", expiresAt.Format(time.RFC3339)))
	} else {
		b.WriteString(label("expires", "never"))
	}
	b.WriteString(Dim("  Start with: elicit interview chat <link>") + "\n")
	return b.String()
}

func lockBadge(locked bool) string {
	if locked {
		return StyleYellow.Render("locked")
	}
	return StyleGreen.Render("open")
}
