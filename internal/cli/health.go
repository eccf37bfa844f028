package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/models"
)

func newHealthCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.Gateway.HealthTimeout)
			defer cancel()

			health, err := rt.client().Health(ctx)
			if err != nil {
				return Exitf(ExitCodeFailure, "health: %w", err)
			}
			err = writeOutput(cmd.OutOrStdout(), rt.format(), health, func(out io.Writer) error {
				return writeFields(out, [][2]string{
					{"Status", health.Status},
					{"Message", health.Message},
				})
			})
			if err != nil {
				return err
			}
			if !health.Healthy() {
				return negative("service reports %q", health.Status)
			}
			return nil
		},
	}
}

// statusReport combines the health probe with the token count.
type statusReport struct {
	Gateway     string `json:"gateway" yaml:"gateway"`
	Healthy     bool   `json:"healthy" yaml:"healthy"`
	Health      string `json:"health" yaml:"health"`
	Tokens      int    `json:"tokens" yaml:"tokens"`
	TokensError string `json:"tokens_error,omitempty" yaml:"tokens_error,omitempty"`
}

func newStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service health and the number of stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := collectStatus(cmd.Context(), rt)
			err := writeOutput(cmd.OutOrStdout(), rt.format(), report, func(out io.Writer) error {
				tokens := strconv.Itoa(report.Tokens)
				if report.TokensError != "" {
					tokens = "unavailable: " + report.TokensError
				}
				return writeFields(out, [][2]string{
					{"Gateway", report.Gateway},
					{"Healthy", formatYesNo(report.Healthy)},
					{"Health", report.Health},
					{"Tokens", tokens},
				})
			})
			if err != nil {
				return err
			}
			if !report.Healthy {
				return negative("service is not healthy")
			}
			return nil
		},
	}
}

// collectStatus runs the health probe and the token listing concurrently.
// Failures are folded into the report.
func collectStatus(ctx context.Context, rt *runtime) statusReport {
	client := rt.client()
	report := statusReport{Gateway: rt.cfg.Gateway.URL}

	var health models.Health
	var healthErr, tokensErr error
	var tokens []models.TokenRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hctx, cancel := context.WithTimeout(gctx, rt.cfg.Gateway.HealthTimeout)
		defer cancel()
		health, healthErr = client.Health(hctx)
		return nil
	})
	g.Go(func() error {
		tctx, cancel := context.WithTimeout(gctx, rt.cfg.Gateway.Timeout)
		defer cancel()
		tokens, tokensErr = client.ListTokens(tctx)
		return nil
	})
	_ = g.Wait()

	switch {
	case healthErr != nil:
		report.Health = "unavailable: " + gateway.Message(healthErr)
	default:
		report.Healthy = health.Healthy()
		report.Health = health.Status
		if health.Message != "" {
			report.Health += " (" + health.Message + ")"
		}
	}
	if tokensErr != nil {
		report.TokensError = gateway.Message(tokensErr)
	} else {
		report.Tokens = len(tokens)
	}
	return report
}
