package intelligence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/llm"
)

type llmCollaborator struct {
	client   llm.LLMClient
	observer llm.Observer
	now      func() time.Time
}

// NewLLMCollaborator creates an InterviewCollaborator backed by an LLM client.
func NewLLMCollaborator(client llm.LLMClient, observer llm.Observer) InterviewCollaborator {
	if observer == nil {
		observer = llm.NoopObserver{}
	}
	return &llmCollaborator{client: client, observer: observer, now: time.Now}
}

func (c *llmCollaborator) GenerateTurn(ctx context.Context, tc TurnContext) Outcome[TurnResponse] {
	if tc.Study == nil {
		return Failure[TurnResponse](fmt.Errorf("turn context has no study"))
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskTurn,
		SystemPrompt: BuildTurnSystemPrompt(tc),
		Messages:     TranscriptToChat(tc.Window),
		JSON:         true,
	})
	if err != nil {
		return Failure[TurnResponse](fmt.Errorf("llm turn generation failed: %w", err))
	}

	parsed, err := ParseTurnResponse(resp.Text)
	if err != nil {
		c.reportInvalid(llm.TaskTurn, resp)
		return Failure[TurnResponse](fmt.Errorf("failed to extract turn response: %w", err))
	}
	return Success(parsed)
}

func (c *llmCollaborator) GenerateGreeting(ctx context.Context, study *domain.StudyConfig) Outcome[string] {
	if study == nil {
		return Failure[string](fmt.Errorf("no study"))
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:     llm.TaskGreeting,
		Messages: []llm.ChatMessage{{Role: llm.ChatUser, Content: buildGreetingPrompt(study)}},
	})
	if err != nil {
		return Failure[string](fmt.Errorf("llm greeting failed: %w", err))
	}
	text := strings.Trim(strings.TrimSpace(resp.Text), `"`)
	if text == "" {
		c.reportInvalid(llm.TaskGreeting, resp)
		return Failure[string](fmt.Errorf("%w: empty greeting", llm.ErrInvalidOutput))
	}
	return Success(text)
}

type sessionSynthesisResponse struct {
	StatedPreferences   []string       `json:"statedPreferences"`
	RevealedPreferences []string       `json:"revealedPreferences"`
	Themes              []domain.Theme `json:"themes"`
	Contradictions      []string       `json:"contradictions"`
	KeyInsights         []string       `json:"keyInsights"`
	BottomLine          string         `json:"bottomLine"`
}

func validateSessionSynthesis(r sessionSynthesisResponse) error {
	if strings.TrimSpace(r.BottomLine) == "" {
		return fmt.Errorf("bottomLine is required")
	}
	return nil
}

func (c *llmCollaborator) SynthesizeSession(ctx context.Context, in SessionInput) Outcome[domain.SynthesisResult] {
	if in.Study == nil {
		return Failure[domain.SynthesisResult](fmt.Errorf("no study"))
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:     llm.TaskSessionSynthesis,
		Messages: []llm.ChatMessage{{Role: llm.ChatUser, Content: buildSessionSynthesisPrompt(in)}},
		JSON:     true,
	})
	if err != nil {
		return Failure[domain.SynthesisResult](fmt.Errorf("llm session synthesis failed: %w", err))
	}
	parsed, err := llm.ExtractJSON(resp.Text, validateSessionSynthesis)
	if err != nil {
		c.reportInvalid(llm.TaskSessionSynthesis, resp)
		return Failure[domain.SynthesisResult](fmt.Errorf("failed to extract session synthesis: %w", err))
	}

	out := domain.SynthesisResult{
		StatedPreferences:   parsed.StatedPreferences,
		RevealedPreferences: parsed.RevealedPreferences,
		Themes:              parsed.Themes,
		Contradictions:      parsed.Contradictions,
		KeyInsights:         parsed.KeyInsights,
		BottomLine:          parsed.BottomLine,
		Source:              "llm",
		GeneratedAt:         c.now().UTC(),
	}
	out.Normalize()
	return Success(out)
}

type aggregateResponse struct {
	CommonThemes []struct {
		Theme                string   `json:"theme"`
		Frequency            int      `json:"frequency"`
		RepresentativeQuotes []string `json:"representativeQuotes"`
	} `json:"commonThemes"`
	DivergentViews []struct {
		Topic string `json:"topic"`
		ViewA string `json:"viewA"`
		ViewB string `json:"viewB"`
	} `json:"divergentViews"`
	KeyFindings          []string `json:"keyFindings"`
	ResearchImplications []string `json:"researchImplications"`
	BottomLine           string   `json:"bottomLine"`
}

func validateAggregate(r aggregateResponse) error {
	if strings.TrimSpace(r.BottomLine) == "" {
		return fmt.Errorf("bottomLine is required")
	}
	return nil
}

func (c *llmCollaborator) SynthesizeAggregate(ctx context.Context, study *domain.StudyConfig, results []domain.SynthesisResult) Outcome[domain.AggregateSynthesisResult] {
	if study == nil {
		return Failure[domain.AggregateSynthesisResult](fmt.Errorf("no study"))
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:     llm.TaskAggregateSynthesis,
		Messages: []llm.ChatMessage{{Role: llm.ChatUser, Content: buildAggregatePrompt(study, results)}},
		JSON:     true,
	})
	if err != nil {
		return Failure[domain.AggregateSynthesisResult](fmt.Errorf("llm aggregate synthesis failed: %w", err))
	}
	parsed, err := llm.ExtractJSON(resp.Text, validateAggregate)
	if err != nil {
		c.reportInvalid(llm.TaskAggregateSynthesis, resp)
		return Failure[domain.AggregateSynthesisResult](fmt.Errorf("failed to extract aggregate synthesis: %w", err))
	}

	out := domain.AggregateSynthesisResult{
		KeyFindings:          parsed.KeyFindings,
		ResearchImplications: parsed.ResearchImplications,
		BottomLine:           parsed.BottomLine,
		Source:               "llm",
	}
	for _, t := range parsed.CommonThemes {
		out.CommonThemes = append(out.CommonThemes, domain.CommonTheme{
			Theme:                t.Theme,
			Frequency:            t.Frequency,
			RepresentativeQuotes: t.RepresentativeQuotes,
		})
	}
	for _, d := range parsed.DivergentViews {
		out.DivergentViews = append(out.DivergentViews, domain.DivergentView{
			Topic: d.Topic,
			ViewA: d.ViewA,
			ViewB: d.ViewB,
		})
	}
	out.Normalize()
	return Success(out)
}

func validateFollowup(p FollowupProposal) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.ResearchQuestion) == "" {
		return fmt.Errorf("researchQuestion is required")
	}
	nonEmpty := 0
	for _, q := range p.CoreQuestions {
		if strings.TrimSpace(q) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return fmt.Errorf("at least one core question is required")
	}
	return nil
}

func (c *llmCollaborator) GenerateFollowup(ctx context.Context, parent *domain.StudyConfig, agg *domain.AggregateSynthesisResult) Outcome[FollowupProposal] {
	if parent == nil || agg == nil {
		return Failure[FollowupProposal](fmt.Errorf("parent study and aggregate are required"))
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:     llm.TaskFollowup,
		Messages: []llm.ChatMessage{{Role: llm.ChatUser, Content: buildFollowupPrompt(parent, agg)}},
		JSON:     true,
	})
	if err != nil {
		return Failure[FollowupProposal](fmt.Errorf("llm follow-up generation failed: %w", err))
	}
	parsed, err := llm.ExtractJSON(resp.Text, validateFollowup)
	if err != nil {
		c.reportInvalid(llm.TaskFollowup, resp)
		return Failure[FollowupProposal](fmt.Errorf("failed to extract follow-up: %w", err))
	}

	questions := parsed.CoreQuestions[:0]
	for _, q := range parsed.CoreQuestions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	parsed.CoreQuestions = questions
	return Success(parsed)
}

// reportInvalid records a call that succeeded at transport level but whose
// output could not be used.
func (c *llmCollaborator) reportInvalid(task llm.TaskType, resp *llm.GenerateResponse) {
	c.observer.OnCallComplete(llm.LLMCallEvent{
		Task:      task,
		Model:     resp.Model,
		LatencyMs: resp.LatencyMs,
		Success:   false,
		ErrorCode: llm.ErrorCode(llm.ErrInvalidOutput),
	})
}
