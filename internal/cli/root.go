// Package cli implements the jwtlens command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/jwtlens/internal/config"
	"github.com/tOgg1/jwtlens/internal/gateway"
	"github.com/tOgg1/jwtlens/internal/logging"
)

// Execute runs the root command with os.Args.
func Execute(version string) error {
	return newRootCmd(version, newRuntime()).Execute()
}

// runtime carries what subcommands share: global flags, the loaded config
// and the gateway factory.
type runtime struct {
	configFile string
	apiURL     string
	logLevel   string
	output     string

	cfg        *config.Config
	newGateway func(cfg *config.Config) gateway.Gateway
	isTTY      func() bool
	runTUI     func(rt *runtime) error
}

func newRuntime() *runtime {
	return &runtime{
		newGateway: func(cfg *config.Config) gateway.Gateway {
			return gateway.NewHTTPClient(gateway.Config{
				BaseURL: cfg.Gateway.URL,
				Timeout: cfg.Gateway.Timeout,
			})
		},
		isTTY:  hasTTY,
		runTUI: runTUI,
	}
}

func newRootCmd(version string, rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwtlens",
		Short: "Inspect, verify and create JSON Web Tokens",
		Long: "jwtlens is a terminal client for a JWT analysis service.\n" +
			"Without a subcommand it opens the interactive UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			logger := logging.Logger.With().Str("command", cmd.CommandPath()).Logger()
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rt.isTTY() {
				return cmd.Help()
			}
			return rt.runTUI(rt)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rt.configFile, "config", "", "config file (default is $HOME/.config/jwtlens/config.yaml)")
	flags.StringVar(&rt.apiURL, "api-url", "", "analysis service URL, e.g. http://localhost:5000/api")
	flags.StringVar(&rt.logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	flags.StringVarP(&rt.output, "output", "o", string(formatTable), "output format: table|json|yaml")

	cmd.AddCommand(
		newUICmd(rt),
		newTokensCmd(rt),
		newAnalyzeCmd(rt),
		newVerifyCmd(rt),
		newCreateCmd(rt),
		newHealthCmd(rt),
		newStatusCmd(rt),
	)
	return cmd
}

// load reads the configuration, applies flag overrides and initializes
// logging to stderr. The interactive UI moves logging to a file later.
func (rt *runtime) load() error {
	if _, err := parseFormat(rt.output); err != nil {
		return err
	}

	loader := config.NewLoader()
	if rt.configFile != "" {
		loader.SetConfigFile(rt.configFile)
	}
	if url := strings.TrimSpace(rt.apiURL); url != "" {
		loader.Set("gateway.url", url)
	}
	if level := strings.TrimSpace(rt.logLevel); level != "" {
		loader.Set("logging.level", level)
	}

	cfg, err := loader.Load()
	if err != nil {
		return Exitf(ExitCodeFailure, "%w", err)
	}
	rt.cfg = cfg

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       os.Stderr,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	logger := logging.Component("cli")
	logger.Debug().
		Str("config_file", loader.ConfigFileUsed()).
		Str("gateway", cfg.Gateway.URL).
		Msg("configuration loaded")
	return nil
}

func (rt *runtime) client() gateway.Gateway {
	return rt.newGateway(rt.cfg)
}

func (rt *runtime) format() outputFormat {
	f, _ := parseFormat(rt.output)
	return f
}

// Exit codes.
const (
	ExitCodeFailure = 1
	// ExitCodeNegative reports a completed check with a negative verdict.
	ExitCodeNegative = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
	// Printed is set when the command already reported the failure.
	Printed bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exitf returns an ExitError with a formatted message.
func Exitf(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// negative reports a negative verdict that the command already printed.
func negative(format string, args ...any) error {
	return &ExitError{Code: ExitCodeNegative, Err: fmt.Errorf(format, args...), Printed: true}
}
