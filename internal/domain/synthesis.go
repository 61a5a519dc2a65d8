package domain

import "time"

type Theme struct {
	Theme     string   `json:"theme"`
	Evidence  []string `json:"evidence"`
	Frequency int      `json:"frequency"`
}

// SynthesisResult summarizes one completed session.
type SynthesisResult struct {
	StatedPreferences   []string  `json:"stated_preferences"`
	RevealedPreferences []string  `json:"revealed_preferences"`
	Themes              []Theme   `json:"themes"`
	Contradictions      []string  `json:"contradictions"`
	KeyInsights         []string  `json:"key_insights"`
	BottomLine          string    `json:"bottom_line"`
	Source              string    `json:"source"` // "llm" or "placeholder"
	GeneratedAt         time.Time `json:"generated_at"`
}

type CommonTheme struct {
	Theme                string   `json:"theme"`
	Frequency            int      `json:"frequency"`
	RepresentativeQuotes []string `json:"representative_quotes"`
}

type DivergentView struct {
	Topic string `json:"topic"`
	ViewA string `json:"view_a"`
	ViewB string `json:"view_b"`
}

// AggregateSynthesisResult combines the syntheses of several sessions in one
// study. It is computed on demand; persisting it is the caller's choice.
type AggregateSynthesisResult struct {
	StudyID              string          `json:"study_id"`
	InterviewCount       int             `json:"interview_count"`
	CommonThemes         []CommonTheme   `json:"common_themes"`
	DivergentViews       []DivergentView `json:"divergent_views"`
	KeyFindings          []string        `json:"key_findings"`
	ResearchImplications []string        `json:"research_implications"`
	BottomLine           string          `json:"bottom_line"`
	Source               string          `json:"source"`
	GeneratedAt          time.Time       `json:"generated_at"`
}

// Normalize replaces nil lists with empty ones so consumers never see null.
func (a *AggregateSynthesisResult) Normalize() {
	if a.CommonThemes == nil {
		a.CommonThemes = []CommonTheme{}
	}
	if a.DivergentViews == nil {
		a.DivergentViews = []DivergentView{}
	}
	if a.KeyFindings == nil {
		a.KeyFindings = []string{}
	}
	if a.ResearchImplications == nil {
		a.ResearchImplications = []string{}
	}
	for i := range a.CommonThemes {
		if a.CommonThemes[i].RepresentativeQuotes == nil {
			a.CommonThemes[i].RepresentativeQuotes = []string{}
		}
	}
}

// Normalize replaces nil lists with empty ones.
func (s *SynthesisResult) Normalize() {
	if s.StatedPreferences == nil {
		s.StatedPreferences = []string{}
	}
	if s.RevealedPreferences == nil {
		s.RevealedPreferences = []string{}
	}
	if s.Themes == nil {
		s.Themes = []Theme{}
	}
	if s.Contradictions == nil {
		s.Contradictions = []string{}
	}
	if s.KeyInsights == nil {
		s.KeyInsights = []string{}
	}
}
