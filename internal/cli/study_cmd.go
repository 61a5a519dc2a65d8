package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexanderramin/elicit/internal/cli/formatter"
	"github.com/alexanderramin/elicit/internal/importer"
	"github.com/spf13/cobra"
)

func newStudyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Manage studies",
	}

	cmd.AddCommand(
		newStudyImportCmd(app),
		newStudyListCmd(app),
		newStudyShowCmd(app),
		newStudyLinkCmd(app),
		newStudyExportCmd(app),
	)

	return cmd
}

func newStudyImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a study from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Studies.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.StyleGreen.Render("Imported study ")+formatter.Bold(s.Name)+" "+formatter.Dim(s.ID))
			fmt.Fprintln(out, formatter.FormatStudy(s))
			return nil
		},
	}
}

func newStudyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List studies, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			studies, err := app.Studies.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStudyList(studies, app.clock()))
			return nil
		},
	}
}

func newStudyShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show study details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := studyByInput(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStudy(s))
			return nil
		},
	}
}

func newStudyLinkCmd(app *App) *cobra.Command {
	var ttl string

	cmd := &cobra.Command{
		Use:   "link ID",
		Short: "Issue a participant link for a study",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := studyByInput(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			lifetime := app.LinkTTL
			if cmd.Flags().Changed("ttl") {
				if lifetime, err = parseTTL(ttl); err != nil {
					return err
				}
			}

			link, err := app.Studies.IssueLink(cmd.Context(), s.ID, lifetime)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLink(link.Token, s.Name, link.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&ttl, "ttl", "", "Link lifetime, e.g. 72h; 0 for no expiry")

	return cmd
}

func newStudyExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a study as an importable YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := studyByInput(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return writeStudyFile(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return importer.ExportDraft(w, s)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

// writeStudyFile runs write against path, or against stdout when path is empty.
func writeStudyFile(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	fmt.Fprintln(stdout, formatter.Dim("Wrote "+path))
	return nil
}

func parseTTL(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --ttl %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid --ttl %q: must not be negative", s)
	}
	return d, nil
}
