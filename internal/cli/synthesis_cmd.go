package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/elicit/internal/cli/formatter"
	"github.com/alexanderramin/elicit/internal/importer"
	"github.com/alexanderramin/elicit/internal/repository"
	"github.com/alexanderramin/elicit/internal/synthesis"
	"github.com/spf13/cobra"
)

func newSynthesisCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "synthesis",
		Aliases: []string{"synth"},
		Short:   "Synthesize findings across a study's sessions",
	}

	cmd.AddCommand(
		newSynthesisRunCmd(app),
		newSynthesisShowCmd(app),
		newSynthesisFollowupCmd(app),
	)

	return cmd
}

func newSynthesisRunCmd(app *App) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "run STUDY",
		Short: "Synthesize every completed session of a study",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			studyID, err := resolveStudyID(ctx, app, args[0])
			if err != nil {
				return err
			}

			stop := startSpinner(app, cmd, "Synthesizing...")
			agg, err := app.Synthesis.Aggregate(ctx, studyID, save)
			stop()
			if errors.Is(err, synthesis.ErrInsufficientData) {
				return fmt.Errorf("%w: at least %d completed sessions are needed", err, synthesis.MinSessions)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatAggregate(agg))
			if save {
				fmt.Fprintln(out, formatter.Dim("Saved as the study's latest synthesis."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Keep the result as the study's latest synthesis")

	return cmd
}

func newSynthesisShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show STUDY",
		Short: "Show the latest saved synthesis of a study",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			studyID, err := resolveStudyID(ctx, app, args[0])
			if err != nil {
				return err
			}
			agg, err := app.Synthesis.Latest(ctx, studyID)
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No saved synthesis. Run 'elicit synthesis run --save' first."))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAggregate(agg))
			return nil
		},
	}
}

func newSynthesisFollowupCmd(app *App) *cobra.Command {
	var output string
	var save bool

	cmd := &cobra.Command{
		Use:   "followup STUDY",
		Short: "Draft a follow-up study from the study's findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			studyID, err := resolveStudyID(ctx, app, args[0])
			if err != nil {
				return err
			}

			stop := startSpinner(app, cmd, "Drafting follow-up...")
			draft, err := app.Synthesis.Followup(ctx, studyID)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if save {
				if err := app.Studies.Create(ctx, draft); err != nil {
					return fmt.Errorf("saving follow-up study: %w", err)
				}
				fmt.Fprintln(out, formatter.StyleGreen.Render("Created follow-up study ")+formatter.Bold(draft.Name)+" "+formatter.Dim(draft.ID))
			}
			if output != "" {
				return writeStudyFile(out, output, func(w io.Writer) error {
					return importer.ExportDraft(w, draft)
				})
			}
			if !save {
				fmt.Fprintln(out, formatter.FormatDraft(draft))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the draft as an importable YAML file")
	cmd.Flags().BoolVar(&save, "save", false, "Create the follow-up study immediately")

	return cmd
}

// startSpinner animates on stderr when attached to a terminal.
func startSpinner(app *App, cmd *cobra.Command, message string) func() {
	if !app.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), message)
}
