package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
)

// FormatSessionList renders the completed sessions of a study.
func FormatSessionList(records []*domain.SessionRecord, now time.Time) string {
	if len(records) == 0 {
		return Dim("No completed sessions.") + "\n"
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		completed := "-"
		if r.CompletedAt != nil {
			completed = RelativeDateFrom(*r.CompletedAt, now)
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			fmt.Sprintf("%d", countRole(r.Transcript, domain.RoleParticipant)),
			synthesisSource(r.Synthesis),
			completed,
		})
	}
	return RenderTable([]string{"SESSION", "TURNS", "SYNTHESIS", "COMPLETED"}, rows)
}

// FormatMessage renders one transcript line.
func FormatMessage(m domain.InterviewMessage) string {
	switch m.Role {
	case domain.RoleParticipant:
		return StyleBlue.Render("you") + "  " + m.Content
	case domain.RoleSystem:
		return Dim("sys  " + m.Content)
	default:
		return StylePurple.Render("ai ") + "  " + StyleFg.Render(m.Content)
	}
}

// FormatTranscript renders a full conversation.
func FormatTranscript(msgs []domain.InterviewMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(FormatMessage(m) + "\n")
	}
	return b.String()
}

// FormatProfile renders extracted profile fields with their labels from schema.
func FormatProfile(p *domain.ParticipantProfile, schema []domain.ProfileField) string {
	if p == nil || len(p.Fields) == 0 {
		return "  " + Dim("no profile fields") + "\n"
	}
	labels := make(map[string]string, len(schema))
	for _, f := range schema {
		labels[f.ID] = f.Label
	}

	rows := make([][]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		name := labels[f.FieldID]
		if name == "" {
			name = f.FieldID
		}
		value := Dim("-")
		if f.Value != nil {
			value = *f.Value
		}
		rows = append(rows, []string{name, value, FieldStatusPill(f.Status)})
	}
	return RenderTable([]string{"FIELD", "VALUE", "STATUS"}, rows)
}

// FormatSessionRecord renders a stored session with its synthesis.
func FormatSessionRecord(r *domain.SessionRecord, study *domain.StudyConfig) string {
	var b strings.Builder

	b.WriteString(label("session", r.ID))
	b.WriteString(label("study", study.Name))
	b.WriteString(label("started", r.StartedAt.Format(time.RFC3339)))
	if r.CompletedAt != nil {
		b.WriteString(label("completed", r.CompletedAt.Format(time.RFC3339)))
	}
	if r.Progress != nil {
		b.WriteString(label("questions", fmt.Sprintf("%d/%d asked", len(r.Progress.QuestionsAsked), r.Progress.TotalQuestions)))
	}

	b.WriteString("\n" + Header("Profile") + "\n")
	b.WriteString(FormatProfile(r.Profile, study.ProfileSchema))

	if r.Behavior != nil {
		b.WriteString("\n" + Header("Behavior") + "\n")
		b.WriteString(formatBehavior(r.Behavior))
	}

	b.WriteString("\n" + Header("Synthesis") + "\n")
	b.WriteString(FormatSessionSynthesis(r.Synthesis))

	b.WriteString("\n" + Header("Transcript") + "\n")
	b.WriteString(FormatTranscript(r.Transcript))

	return RenderBox("Session", b.String())
}

// FormatSessionSynthesis renders the per-session synthesis.
func FormatSessionSynthesis(s *domain.SynthesisResult) string {
	if s == nil {
		return "  " + Dim("not synthesized") + "\n"
	}
	var b strings.Builder
	b.WriteString("  " + Bold(s.BottomLine) + " " + Dim("("+s.Source+")") + "\n")
	b.WriteString(Dim("  key insights") + "\n")
	b.WriteString(bullets(s.KeyInsights))
	if len(s.Themes) > 0 {
		b.WriteString(Dim("  themes") + "\n")
		for _, t := range s.Themes {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", StyleDim.Render("•"), t.Theme, Dim(fmt.Sprintf("x%d", t.Frequency))))
		}
	}
	if len(s.Contradictions) > 0 {
		b.WriteString(Dim("  contradictions") + "\n")
		b.WriteString(bullets(s.Contradictions))
	}
	return b.String()
}

// FormatCompletion renders the outcome of completing a session.
func FormatCompletion(persisted bool, reason string, counterUpdated bool) string {
	if !persisted {
		return StyleRed.Render("Session not saved: "+reason) + "\n"
	}
	out := StyleGreen.Render("Session saved. Thank you for taking part.") + "\n"
	if !counterUpdated {
		out += Dim("  (study counter not updated)") + "\n"
	}
	return out
}

func formatBehavior(b *domain.BehaviorData) string {
	var out strings.Builder
	for _, p := range domain.Phases {
		n := b.MessagesPerPhase[p]
		if n == 0 {
			continue
		}
		out.WriteString(fmt.Sprintf("  %-28s %d msgs  %s\n", PhaseBadge(p), n, Dim(FormatSeconds(b.TimePerTopic[p]))))
	}
	if len(b.ExploredTopics) > 0 {
		topics := append([]string(nil), b.ExploredTopics...)
		sort.Strings(topics)
		out.WriteString(label("topics", strings.Join(topics, ", ")))
	}
	if b.AudioPreference != nil {
		out.WriteString(label("audio", string(b.AudioPreference.Mode)))
	}
	return out.String()
}

func countRole(msgs []domain.InterviewMessage, role domain.MessageRole) int {
	n := 0
	for _, m := range msgs {
		if m.Role == role {
			n++
		}
	}
	return n
}

func synthesisSource(s *domain.SynthesisResult) string {
	if s == nil {
		return Dim("none")
	}
	if s.Source == "placeholder" {
		return StyleYellow.Render(s.Source)
	}
	return StyleGreen.Render(s.Source)
}
