package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tOgg1/jwtlens/internal/models"
)

const (
	defaultHeaderJSON  = `{"alg": "HS256", "typ": "JWT"}`
	defaultPayloadJSON = `{"sub": "1234567890", "name": "John Doe", "iat": 1516239022}`
)

type createResult struct {
	Token string `json:"token" yaml:"token"`
}

func newCreateCmd(rt *runtime) *cobra.Command {
	var header, payload, secret string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Sign a header and payload into a new token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := models.ValidateSigningInput(header, payload, secret, rt.cfg.TUI.DefaultSecret)
			if err != nil {
				return Exitf(ExitCodeFailure, "invalid input: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Gateway.Timeout)
			defer cancel()

			token, err := rt.client().Create(ctx, input.Header, input.Payload, input.Secret)
			if err != nil {
				return Exitf(ExitCodeFailure, "create: %w", err)
			}

			format := rt.format()
			err = writeOutput(cmd.OutOrStdout(), format, createResult{Token: token}, func(out io.Writer) error {
				_, err := fmt.Fprintln(out, token)
				return err
			})
			if err != nil {
				return err
			}
			if format == formatTable {
				printNextSteps(cmd.ErrOrStderr(), hintContext{action: "create", token: token})
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&header, "header", defaultHeaderJSON, "header as a JSON object")
	cmd.Flags().StringVar(&payload, "payload", defaultPayloadJSON, "payload as a JSON object")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "signing secret (default from tui.default_secret)")
	return cmd
}
