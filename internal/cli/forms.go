package cli

import (
	"github.com/alexanderramin/elicit/internal/cli/formatter"
	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func elicitHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// consentForm asks the participant to accept the study's consent text and
// pick how they want to answer.
func consentForm(study *domain.StudyConfig, accepted *bool, audio *domain.AudioMode) *huh.Form {
	consent := study.ConsentText
	if consent == "" {
		consent = "Your answers will be recorded for research purposes."
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(study.Name).
				Description(consent),
			huh.NewConfirm().
				Title("Do you agree to take part?").
				Affirmative("I agree").
				Negative("No thanks").
				Value(accepted),
		),
		huh.NewGroup(
			huh.NewSelect[domain.AudioMode]().
				Title("How would you like to answer?").
				Options(
					huh.NewOption("Typing", domain.AudioText),
					huh.NewOption("Dictation (voice to text)", domain.AudioVoice),
				).
				Value(audio),
		).WithHideFunc(func() bool { return !*accepted }),
	).WithTheme(elicitHuhTheme()).WithShowHelp(false)
}
