package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/jwtlens/internal/models"
)

func newVerifyCmd(rt *runtime) *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token signature with a secret key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if err := models.ValidateCompact(raw); err != nil {
				return Exitf(ExitCodeFailure, "%w", err)
			}
			key := secret
			if !cmd.Flags().Changed("secret") {
				key = rt.cfg.TUI.DefaultSecret
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return Exitf(ExitCodeFailure, "%w", models.ErrEmptySecret)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Gateway.Timeout)
			defer cancel()

			result, err := rt.client().Verify(ctx, raw, key)
			if err != nil {
				return Exitf(ExitCodeFailure, "verify: %w", err)
			}
			err = writeOutput(cmd.OutOrStdout(), rt.format(), result, func(out io.Writer) error {
				return writeVerifyResult(out, result)
			})
			if err != nil {
				return err
			}
			if !result.Valid {
				return negative("signature is not valid")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "secret key (default from tui.default_secret)")
	return cmd
}

func writeVerifyResult(out io.Writer, result models.VerifyResult) error {
	verdict := "valid"
	if !result.Valid {
		verdict = "invalid"
	}
	fields := [][2]string{{"Signature", verdict}}
	if result.Algorithm != "" {
		fields = append(fields, [2]string{"Algorithm", result.Algorithm})
	}
	if result.Error != "" {
		fields = append(fields, [2]string{"Error", result.Error})
	}
	if result.Valid && result.Payload != nil {
		fields = append(fields, [2]string{"Payload", models.PrettyJSON(result.Payload)})
	}
	return writeFields(out, fields)
}
