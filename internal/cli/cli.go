package cli

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/primcall/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command names an action of the program.
type Command string

const (
	// CommandRun evaluates query files or a single inline call.
	CommandRun Command = "run"
	// CommandFunctions lists the function catalog.
	CommandFunctions Command = "functions"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command Command
	Config  *app.Config
}

// Parse processes command-line arguments. It returns the invocation, a
// boolean indicating if the program should exit cleanly (help was printed),
// or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	var inv *Invocation

	root := &cobra.Command{
		Use:   "primcall",
		Short: "Evaluate primitive numeric functions over query files.",
		Long: `primcall - evaluates calls to registered primitive functions.

Calls whose arguments cannot be used are reported as diagnostics rather than
aborting the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)
	root.PersistentFlags().String("catalog", "", "Path to a file or directory of HCL function manifests.")
	root.PersistentFlags().String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	cmd := &cobra.Command{
		Use:   "run [flags] QUERY_PATH",
		Short: "Evaluate every call block in a query file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, app.Config{QueryPath: args[0]})
			if err != nil {
				return err
			}
			inv = &Invocation{Command: CommandRun, Config: cfg}
			return nil
		}}
	addEvalFlags(cmd)
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "call [flags] FUNCTION [NAME=VALUE...]",
		Short: "Evaluate a single call given on the command line",
		Example: `  primcall call numpy.sum 'A=[1, 2, 3]'
  primcall call pystd 'A=[2, 4, 4, 4, 5, 5, 7, 9]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, app.Config{Function: args[0], Arguments: args[1:]})
			if err != nil {
				return err
			}
			inv = &Invocation{Command: CommandRun, Config: cfg}
			return nil
		}}
	addEvalFlags(cmd)
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "functions",
		Short: "List the registered functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, app.Config{WorkerCount: 1})
			if err != nil {
				return err
			}
			inv = &Invocation{Command: CommandFunctions, Config: cfg}
			return nil
		}}
	root.AddCommand(cmd)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if inv == nil {
		slog.Debug("No command executed, help was printed.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", inv.Command, "config", inv.Config)
	return inv, false, nil
}

func addEvalFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 10, "Number of concurrent workers evaluating calls.")
	cmd.Flags().String("engine-url", "", "socket.io URL of a remote numeric engine. Empty uses the built-in engine.")
	cmd.Flags().String("engine-namespace", "", "socket.io namespace of the remote engine.")
	cmd.Flags().Bool("engine-insecure-skip-verify", false, "Skip TLS certificate verification for the remote engine.")
	cmd.Flags().Duration("engine-connect-timeout", 15*time.Second, "Time allowed for the remote engine handshake.")
	cmd.Flags().String("diagnostics-db", "", "SQLite file to store diagnostics in. Empty disables storage.")
	cmd.Flags().Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
}

// buildConfig reads the shared flags into base and validates the result.
func buildConfig(cmd *cobra.Command, base app.Config) (*app.Config, error) {
	base.LogFormat, _ = cmd.Flags().GetString("log-format")
	base.LogLevel, _ = cmd.Flags().GetString("log-level")
	base.CatalogPath, _ = cmd.Flags().GetString("catalog")
	if cmd.Flags().Lookup("workers") != nil {
		base.WorkerCount, _ = cmd.Flags().GetInt("workers")
		base.EngineURL, _ = cmd.Flags().GetString("engine-url")
		base.DiagnosticsDB, _ = cmd.Flags().GetString("diagnostics-db")
		base.HealthcheckPort, _ = cmd.Flags().GetInt("healthcheck-port")
		base.EngineNamespace, _ = cmd.Flags().GetString("engine-namespace")
		base.EngineInsecureSkipVerify, _ = cmd.Flags().GetBool("engine-insecure-skip-verify")
		base.EngineConnectTimeout, _ = cmd.Flags().GetDuration("engine-connect-timeout")
	}

	config, err := app.NewConfig(base)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")
	return config, nil
}
