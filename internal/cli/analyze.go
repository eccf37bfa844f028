package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/jwtlens/internal/models"
	"github.com/tOgg1/jwtlens/internal/pipeline"
)

func newAnalyzeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <token>",
		Short: "Run the four analysis stages on a token",
		Long: "Run lexical, decode, syntax and semantic analysis in order.\n" +
			"The run stops at the first stage that fails or reports an invalid token.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if err := models.ValidateCompact(raw); err != nil {
				return Exitf(ExitCodeFailure, "%w", err)
			}

			// Each stage gets the full call timeout.
			timeout := rt.cfg.Gateway.Timeout * time.Duration(len(pipeline.Stages()))
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			report, runErr := pipeline.RunAll(ctx, rt.client(), models.TokenRecord{Token: raw})
			err := writeOutput(cmd.OutOrStdout(), rt.format(), report, func(out io.Writer) error {
				return writeReportTable(out, report)
			})
			if err != nil {
				return err
			}
			if runErr != nil {
				return Exitf(ExitCodeFailure, "%w", runErr)
			}
			if !report.Complete() {
				return negative("token did not pass every stage")
			}
			return nil
		},
	}
}

func writeReportTable(out io.Writer, report pipeline.Report) error {
	rows := make([][]string, 0, len(report.Stages))
	for _, s := range report.Stages {
		detail := s.Error
		if detail == "" {
			detail = s.Message
		}
		rows = append(rows, []string{s.Stage, s.Status, s.Verdict, detail})
	}
	return writeTable(out, []string{"STAGE", "STATUS", "VERDICT", "DETAIL"}, rows)
}
