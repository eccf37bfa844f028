package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/tOgg1/jwtlens/internal/models"
)

const tokenPreviewWidth = 32

func newTokensCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "tokens",
		Aliases: []string{"list", "ls"},
		Short:   "List the tokens known to the analysis service",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Gateway.Timeout)
			defer cancel()

			tokens, err := rt.client().ListTokens(ctx)
			if err != nil {
				return Exitf(ExitCodeFailure, "list tokens: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), rt.format(), tokens, func(out io.Writer) error {
				return writeTokensTable(out, tokens)
			})
		},
	}
}

func writeTokensTable(out io.Writer, tokens []models.TokenRecord) error {
	rows := make([][]string, 0, len(tokens))
	for _, rec := range tokens {
		created := "-"
		if !rec.CreatedAt.IsZero() {
			created = rec.CreatedAt.Format("2006-01-02")
		}
		status := rec.Valid.String()
		if rec.ErrorKind != "" {
			status += " (" + rec.ErrorKind + ")"
		}
		rows = append(rows, []string{
			rec.ID,
			truncate(rec.Name, 32),
			status,
			formatYesNo(rec.HasSecret()),
			created,
			rec.Preview(tokenPreviewWidth),
		})
	}
	return writeTable(out, []string{"ID", "NAME", "VALID", "SECRET", "CREATED", "TOKEN"}, rows)
}
