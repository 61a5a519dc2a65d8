package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
)

// FormatAggregate renders a cross-session synthesis.
func FormatAggregate(a *domain.AggregateSynthesisResult) string {
	var b strings.Builder

	b.WriteString("  " + Bold(a.BottomLine) + "\n")
	b.WriteString(Dim(fmt.Sprintf("  %d interviews, %s, %s", a.InterviewCount, a.Source, a.GeneratedAt.Format(time.RFC3339))) + "\n")

	b.WriteString("\n" + Header("Key findings") + "\n")
	b.WriteString(bullets(a.KeyFindings))

	b.WriteString("\n" + Header("Common themes") + "\n")
	if len(a.CommonThemes) == 0 {
		b.WriteString("  " + Dim("none") + "\n")
	}
	for _, t := range a.CommonThemes {
		b.WriteString(fmt.Sprintf("  %s %s\n", Bold(t.Theme), Dim(fmt.Sprintf("x%d", t.Frequency))))
		for _, q := range t.RepresentativeQuotes {
			b.WriteString("    " + StyleDim.Render("“"+q+"”") + "\n")
		}
	}

	if len(a.DivergentViews) > 0 {
		b.WriteString("\n" + Header("Divergent views") + "\n")
		for _, d := range a.DivergentViews {
			b.WriteString("  " + Bold(d.Topic) + "\n")
			b.WriteString("    " + StyleBlue.Render("A ") + d.ViewA + "\n")
			b.WriteString("    " + StylePurple.Render("B ") + d.ViewB + "\n")
		}
	}

	b.WriteString("\n" + Header("Research implications") + "\n")
	b.WriteString(bullets(a.ResearchImplications))

	return RenderBox("Synthesis", b.String())
}

// FormatDraft renders a generated follow-up study draft.
func FormatDraft(d *domain.StudyConfig) string {
	var b strings.Builder
	if d.Lineage != nil {
		b.WriteString(Dim("Follow-up of "+d.Lineage.ParentName) + "\n\n")
	}
	b.WriteString(FormatStudy(d))
	b.WriteString("\n" + Dim("Draft only. Save it with --save or edit the exported file and import it.") + "\n")
	return b.String()
}
