package cli

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdesk/internal/report"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the number of registered users and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openFromFlags(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			all, err := a.tasks.All(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatSummary(report.Summarize(a.users.Names(), all)))
			return nil
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	var (
		show    bool
		pdfPath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the task and user overview reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openFromFlags(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			reports, err := a.reports.Generate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if show {
				fmt.Fprintf(out, "%s\n%s\n%s\n", reports.TaskText, strings.Repeat("*", 40), reports.UserText)
			} else {
				fmt.Fprintf(out, "Reports written to %s\n", a.cfg.ReportsDir)
			}

			if pdfPath == "" {
				return nil
			}
			f, err := os.Create(pdfPath)
			if err != nil {
				return err
			}
			if err := report.WritePDF(f, reports.TaskText, reports.UserText); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "PDF written to %s\n", pdfPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "print both reports after generating them")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also export both reports to this PDF file")
	return cmd
}

// openFromFlags builds the services for a one-shot command. Logs go to
// stderr so command output stays clean.
func openFromFlags(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return openApp(cmd.Context(), cfg, log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
}
