package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PhaseBadge renders an interview phase with a color per stage.
func PhaseBadge(p domain.InterviewPhase) string {
	switch p {
	case domain.PhaseBackground:
		return StyleBlue.Render("● background")
	case domain.PhaseCoreQuestions:
		return StyleGreen.Render("● core questions")
	case domain.PhaseExploration:
		return StylePurple.Render("● exploration")
	case domain.PhaseFeedback:
		return StyleYellow.Render("● feedback")
	case domain.PhaseWrapUp:
		return StyleDim.Render("✔ wrap-up")
	default:
		return StyleDim.Render(string(p))
	}
}

// FieldStatusPill renders the extraction status of a profile field.
func FieldStatusPill(s domain.FieldStatus) string {
	switch s {
	case domain.FieldExtracted:
		return StyleGreen.Render("✔ extracted")
	case domain.FieldVague:
		return StyleYellow.Render("~ vague")
	case domain.FieldRefused:
		return StyleRed.Render("✖ refused")
	default:
		return StyleDim.Render("○ pending")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}
