package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Studies    service.StudyService
	Interviews service.InterviewService
	Synthesis  service.SynthesisService

	// LinkTTL is the default lifetime of issued participant links. Zero
	// issues links that never expire.
	LinkTTL time.Duration

	// IsInteractive reports whether stdin is a terminal. When nil or false,
	// interviews run in line mode.
	IsInteractive func() bool

	now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "elicit" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "elicit",
		Short:         "AI-led qualitative interviews and synthesis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStudyCmd(app),
		newInterviewCmd(app),
		newSynthesisCmd(app),
	)

	return root
}

// resolveStudyID accepts a full study id or an unambiguous prefix of one.
func resolveStudyID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("study ID is required")
	}

	studies, err := app.Studies.List(ctx)
	if err != nil {
		return "", err
	}

	ids := make([]string, len(studies))
	for i, s := range studies {
		ids[i] = s.ID
	}
	return matchID("study", input, ids)
}

// resolveSessionID does the same for the completed sessions of one study.
func resolveSessionID(ctx context.Context, app *App, studyID, input string) (string, error) {
	records, err := app.Interviews.ListByStudy(ctx, studyID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return matchID("session", input, ids)
}

func matchID(kind, input string, ids []string) (string, error) {
	for _, id := range ids {
		if id == input {
			return id, nil
		}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func studyByInput(ctx context.Context, app *App, input string) (*domain.StudyConfig, error) {
	id, err := resolveStudyID(ctx, app, input)
	if err != nil {
		return nil, err
	}
	return app.Studies.GetByID(ctx, id)
}
