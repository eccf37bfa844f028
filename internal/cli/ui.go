package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/jwtlens/internal/jwtui"
	"github.com/tOgg1/jwtlens/internal/logging"
)

func newUICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the jwtlens TUI",
		Long:  "Launch the jwtlens terminal user interface.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rt.isTTY() {
				return Exitf(ExitCodeFailure, "the UI requires an interactive terminal; use the tokens, analyze, verify or create subcommands instead")
			}
			return rt.runTUI(rt)
		},
	}
}

// runTUI starts the interactive UI. The UI owns the terminal, so logging
// moves to the configured log file for the duration of the session.
func runTUI(rt *runtime) error {
	cfg := rt.cfg
	if err := cfg.EnsureDirectories(); err != nil {
		return Exitf(ExitCodeFailure, "%w", err)
	}
	logFile, err := logging.OpenFile(cfg.LogFilePath())
	if err != nil {
		return Exitf(ExitCodeFailure, "%w", err)
	}
	defer logFile.Close()

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       logFile,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	logger := logging.Component("cli")
	logger.Info().Str("gateway", cfg.Gateway.URL).Msg("starting ui")

	return jwtui.Run(jwtui.Config{
		Gateway:       rt.client(),
		Theme:         cfg.TUI.Theme,
		DefaultView:   cfg.StartView(),
		DefaultSecret: cfg.TUI.DefaultSecret,
		CallTimeout:   cfg.Gateway.Timeout,
		HealthTimeout: cfg.Gateway.HealthTimeout,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
