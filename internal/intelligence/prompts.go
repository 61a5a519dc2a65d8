package intelligence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/llm"
)

const turnResponseContract = `Respond with a single JSON object and nothing else:
{
  "message": "your next message to the participant (required)",
  "questionAddressed": <index of a core question this exchange addressed, or null>,
  "phaseTransition": "background|core-questions|exploration|feedback|wrap-up, or null",
  "profileUpdates": [{"fieldId": "<profile field id>", "value": "<value or null>", "status": "extracted|vague|refused"}],
  "shouldConclude": false,
  "topicsExplored": ["<topic area touched this turn>"],
  "contradiction": "<contradiction with earlier statements, or empty>"
}`

var modeGuidance = map[domain.BehaviorMode]string{
	domain.ModeStructured:  "Stay close to the core questions in order. Ask at most one brief follow-up per answer.",
	domain.ModeStandard:    "Cover every core question, following up where answers are thin or interesting.",
	domain.ModeExploratory: "Treat the core questions as a guide. Follow the participant's lead into adjacent topics.",
}

// BuildTurnSystemPrompt renders the interviewer instructions for one turn
// from the study, the profile state, phase progress and background context.
func BuildTurnSystemPrompt(tc TurnContext) string {
	var b strings.Builder
	study := tc.Study

	b.WriteString("You are a skilled qualitative research interviewer conducting a one-on-one interview.\n")
	fmt.Fprintf(&b, "\n## Study\nName: %s\n", study.Name)
	if study.ResearchQuestion != "" {
		fmt.Fprintf(&b, "Research question: %s\n", study.ResearchQuestion)
	}
	if study.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", study.Description)
	}
	mode := study.Mode
	if mode == "" {
		mode = domain.ModeStandard
	}
	fmt.Fprintf(&b, "Interview style (%s): %s\n", mode, modeGuidance[mode])

	b.WriteString("\n## Core questions\n")
	for i, q := range study.CoreQuestions {
		mark := " "
		if tc.Progress != nil && tc.Progress.Addressed(i) {
			mark = "x"
		}
		fmt.Fprintf(&b, "[%s] %d. %s\n", mark, i, q)
	}

	if len(study.TopicAreas) > 0 {
		b.WriteString("\n## Topic areas\n")
		for _, t := range study.TopicAreas {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}

	if len(study.ProfileSchema) > 0 {
		b.WriteString("\n## Participant profile fields\n")
		for _, f := range study.ProfileSchema {
			status := domain.FieldPending
			if tc.Profile != nil {
				if v, ok := tc.Profile.Field(f.ID); ok {
					status = v.Status
				}
			}
			fmt.Fprintf(&b, "- %s (%s) status=%s", f.ID, f.Label, status)
			if f.Required {
				b.WriteString(" required")
			}
			if f.ExtractionHint != "" {
				fmt.Fprintf(&b, " hint: %s", f.ExtractionHint)
			}
			if len(f.Options) > 0 {
				fmt.Fprintf(&b, " options: %s", strings.Join(f.Options, ", "))
			}
			b.WriteString("\n")
		}
	}

	if tc.Progress != nil {
		fmt.Fprintf(&b, "\n## Progress\nCurrent phase: %s\nCore questions addressed: %d of %d\n",
			tc.Progress.CurrentPhase, len(tc.Progress.QuestionsAsked), tc.Progress.TotalQuestions)
	}

	if tc.Context != "" {
		fmt.Fprintf(&b, "\n## Participant background so far\n%s\n", tc.Context)
	}

	b.WriteString("\n## Rules\n")
	b.WriteString("- Ask one question at a time. Be warm and neutral; never lead the participant.\n")
	b.WriteString("- In the background phase, gather profile fields before moving to core questions.\n")
	b.WriteString("- Only report profileUpdates for the field ids listed above.\n")
	b.WriteString("- Set shouldConclude to true only when the interview is genuinely finished.\n\n")
	b.WriteString(turnResponseContract)

	return b.String()
}

// TranscriptToChat maps interview messages onto chat roles. System messages
// are folded in as user-visible notes so the model keeps their content.
func TranscriptToChat(window []domain.InterviewMessage) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(window))
	for _, m := range window {
		switch m.Role {
		case domain.RoleParticipant:
			out = append(out, llm.ChatMessage{Role: llm.ChatUser, Content: m.Content})
		case domain.RoleAI:
			out = append(out, llm.ChatMessage{Role: llm.ChatAssistant, Content: m.Content})
		default:
			out = append(out, llm.ChatMessage{Role: llm.ChatUser, Content: "[note] " + m.Content})
		}
	}
	return out
}

func buildGreetingPrompt(study *domain.StudyConfig) string {
	var b strings.Builder
	b.WriteString("Write the opening message of a research interview. Introduce the study in one sentence, ")
	b.WriteString("thank the participant, and ask a first open question about their background. ")
	b.WriteString("Plain text only, at most three sentences.\n\n")
	fmt.Fprintf(&b, "Study: %s\n", study.Name)
	if study.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", study.Description)
	}
	if len(study.TopicAreas) > 0 {
		fmt.Fprintf(&b, "Topic areas: %s\n", strings.Join(study.TopicAreas, ", "))
	}
	return b.String()
}

const sessionSynthesisContract = `Respond with a single JSON object:
{
  "statedPreferences": ["..."],
  "revealedPreferences": ["..."],
  "themes": [{"theme": "...", "evidence": ["quote"], "frequency": 1}],
  "contradictions": ["..."],
  "keyInsights": ["..."],
  "bottomLine": "one sentence"
}`

func buildSessionSynthesisPrompt(in SessionInput) string {
	var b strings.Builder
	b.WriteString("Analyse this completed research interview.\n\n")
	fmt.Fprintf(&b, "## Study\n%s\n", in.Study.Name)
	if in.Study.ResearchQuestion != "" {
		fmt.Fprintf(&b, "Research question: %s\n", in.Study.ResearchQuestion)
	}

	b.WriteString("\n## Transcript\n")
	for _, m := range in.Transcript {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}

	if in.Profile != nil {
		b.WriteString("\n## Participant profile\n")
		for _, f := range in.Profile.Fields {
			val := ""
			if f.Value != nil {
				val = *f.Value
			}
			fmt.Fprintf(&b, "- %s: %s (%s)\n", f.FieldID, val, f.Status)
		}
	}

	if in.Behavior != nil {
		if data, err := json.Marshal(in.Behavior); err == nil {
			fmt.Fprintf(&b, "\n## Behavior\n%s\n", data)
		}
	}

	b.WriteString("\n")
	b.WriteString(sessionSynthesisContract)
	return b.String()
}

const aggregateSynthesisContract = `Respond with a single JSON object:
{
  "commonThemes": [{"theme": "...", "frequency": 2, "representativeQuotes": ["..."]}],
  "divergentViews": [{"topic": "...", "viewA": "...", "viewB": "..."}],
  "keyFindings": ["..."],
  "researchImplications": ["..."],
  "bottomLine": "one paragraph"
}`

func buildAggregatePrompt(study *domain.StudyConfig, results []domain.SynthesisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Combine the analyses of %d interviews from the study %q into cross-participant findings.\n",
		len(results), study.Name)
	if study.ResearchQuestion != "" {
		fmt.Fprintf(&b, "Research question: %s\n", study.ResearchQuestion)
	}
	for i, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n## Interview %d\n%s\n", i+1, data)
	}
	b.WriteString("\n")
	b.WriteString(aggregateSynthesisContract)
	return b.String()
}

const followupContract = `Respond with a single JSON object:
{"name": "...", "researchQuestion": "...", "coreQuestions": ["...", "..."]}`

func buildFollowupPrompt(parent *domain.StudyConfig, agg *domain.AggregateSynthesisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a follow-up interview study to the study %q.\n", parent.Name)
	if parent.ResearchQuestion != "" {
		fmt.Fprintf(&b, "Original research question: %s\n", parent.ResearchQuestion)
	}
	b.WriteString("\n## Key findings\n")
	for _, f := range agg.KeyFindings {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if len(agg.ResearchImplications) > 0 {
		b.WriteString("\n## Research implications\n")
		for _, r := range agg.ResearchImplications {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	b.WriteString("\nPropose 3 to 6 open-ended core questions that probe the findings further.\n\n")
	b.WriteString(followupContract)
	return b.String()
}
