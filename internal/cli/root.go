// Package cli implements the tubegrab command-line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iconidentify/tubegrab/internal/config"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitDownloadError = 3
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// ExitError wraps an error with a process exit code. A nil Err means the
// message was already printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// app carries state shared by the subcommands.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	backendURL string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	styles styles
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, styles: defaultStyles()}

	root := &cobra.Command{
		Use:           "tubegrab",
		Short:         "Download videos and audio through a tubegrab backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file")
	root.PersistentFlags().StringVarP(&a.backendURL, "backend", "b", "", "Backend base URL (overrides BACKEND_URL)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(newDownloadCmd(a))
	root.AddCommand(newStatsCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func (a *app) setup() error {
	a.logger = newLogger(a.errOut, a.verbose)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if a.backendURL != "" {
		cfg.Backend.BaseURL = a.backendURL
		if err := cfg.Validate(); err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
	}
	a.cfg = cfg
	return nil
}

// newLogger logs text to a terminal and JSON otherwise. Only warnings are
// shown unless verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func ensureDir(path string) error {
	if path == "" {
		path = "."
	}
	return os.MkdirAll(filepath.Clean(path), 0o755)
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "tubegrab %s (built %s)\n", Version, BuildTime)
			return nil
		},
	}
}
