package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/elicit/internal/cli/formatter"
	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/interview"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errConsentRequired is returned in line mode when consent was not given
// up front.
var errConsentRequired = errors.New("consent is required: rerun with --accept-consent")

func newInterviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Take part in or review interviews",
	}

	cmd.AddCommand(
		newInterviewChatCmd(app),
		newInterviewListCmd(app),
		newInterviewShowCmd(app),
	)

	return cmd
}

func newInterviewChatCmd(app *App) *cobra.Command {
	var acceptConsent bool
	audio := audioFlag(domain.AudioText)

	cmd := &cobra.Command{
		Use:   "chat LINK",
		Short: "Start an interview from a participant link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token := strings.TrimSpace(args[0])

			sess, err := app.Interviews.Start(ctx, token)
			if err != nil {
				return err
			}

			if app.interactive() && !acceptConsent {
				return runInteractiveChat(ctx, cmd, app, token, sess)
			}

			mode := domain.AudioMode(audio)
			if !acceptConsent {
				return errConsentRequired
			}
			if err := sess.SetAudioPreference(mode, app.clock()); err != nil {
				return err
			}
			return runLineChat(ctx, app, token, sess, mode == domain.AudioVoice, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&acceptConsent, "accept-consent", false, "Accept the study consent text and answer line by line")
	cmd.Flags().Var(&audio, "audio", "Answer mode: text or voice")

	return cmd
}

// audioFlag is the --audio value, checked when flags are parsed.
type audioFlag domain.AudioMode

var _ pflag.Value = (*audioFlag)(nil)

func (f *audioFlag) String() string { return string(*f) }

func (f *audioFlag) Set(v string) error {
	mode := domain.AudioMode(strings.ToLower(v))
	if mode != domain.AudioText && mode != domain.AudioVoice {
		return fmt.Errorf("unknown audio mode %q (expected text or voice)", v)
	}
	*f = audioFlag(mode)
	return nil
}

func (f *audioFlag) Type() string { return "mode" }

func runInteractiveChat(ctx context.Context, cmd *cobra.Command, app *App, token string, sess *interview.Session) error {
	out := cmd.OutOrStdout()

	accepted := true
	audio := domain.AudioText
	if err := consentForm(sess.Study(), &accepted, &audio).Run(); err != nil {
		return err
	}
	if !accepted {
		fmt.Fprintln(out, formatter.Dim("No problem. Nothing was recorded."))
		return nil
	}
	if err := sess.SetAudioPreference(audio, app.clock()); err != nil {
		return err
	}

	m := newChatModel(ctx, app.Interviews, token, sess, audio == domain.AudioVoice)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	return reportChat(out, final.(*chatModel))
}

// reportChat prints the outcome of a finished chat model.
func reportChat(out io.Writer, m *chatModel) error {
	if m.err != nil {
		return m.err
	}
	if m.abandoned || m.result == nil {
		fmt.Fprintln(out, formatter.Dim("Interview abandoned. Nothing was saved."))
		return nil
	}
	fmt.Fprint(out, formatter.FormatCompletion(m.result.Persisted, m.result.NotPersistedReason, m.result.CounterUpdated))
	return nil
}

// runLineChat runs the interview over plain lines, one answer per line.
// End of input before completion abandons the session.
func runLineChat(ctx context.Context, app *App, token string, sess *interview.Session, voice bool, in io.Reader, out io.Writer) error {
	for _, msg := range sess.Transcript() {
		fmt.Fprintln(out, formatter.FormatMessage(msg))
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for !sess.IsComplete() {
		fmt.Fprint(out, formatter.StyleBlue.Render("you")+formatter.Dim("> "))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.Dim("Interview abandoned. Nothing was saved."))
			return nil
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, endCommand) {
			app.Interviews.EndEarly(ctx, sess)
			break
		}

		res, err := app.Interviews.Turn(ctx, sess, text, voice)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatter.FormatMessage(res.Reply))
	}

	res, err := app.Interviews.Complete(ctx, token, sess.Record())
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatter.FormatCompletion(res.Persisted, res.NotPersistedReason, res.CounterUpdated))
	if !res.Persisted {
		return fmt.Errorf("session not saved: %s", res.NotPersistedReason)
	}
	return nil
}

func newInterviewListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list STUDY",
		Short: "List completed sessions of a study",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			studyID, err := resolveStudyID(ctx, app, args[0])
			if err != nil {
				return err
			}
			records, err := app.Interviews.ListByStudy(ctx, studyID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(records, app.clock()))
			return nil
		},
	}
}

func newInterviewShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show STUDY SESSION",
		Short: "Show one completed session with its transcript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			study, err := studyByInput(ctx, app, args[0])
			if err != nil {
				return err
			}
			sessionID, err := resolveSessionID(ctx, app, study.ID, args[1])
			if err != nil {
				return err
			}
			rec, err := app.Interviews.GetByID(ctx, study.ID, sessionID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSessionRecord(rec, study))
			return nil
		},
	}
}
