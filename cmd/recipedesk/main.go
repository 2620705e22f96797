// recipedesk browses and edits a remote recipe collection from the
// terminal or over HTTP.
//
// Usage:
//
//	recipedesk [flags]            interactive listing
//	recipedesk list [flags]       print one page and exit
//	recipedesk add                create a recipe with a form
//	recipedesk export --format    dump the collection as json or yaml
//	recipedesk serve              run the HTTP API
package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipedesk/internal/config"
	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/telemetry"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	verbose    bool
	quiet      bool

	v   = config.New()
	cfg config.Config
	log *logger.Logger

	// closeLog releases the log file opened in PersistentPreRunE.
	closeLog = func() {}
)

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"base-url":  config.KeyBaseURL,
	"timeout":   config.KeyTimeout,
	"page-size": config.KeyPageSize,
	"locale":    config.KeyLocale,
	"policy":    config.KeyPolicy,
	"retry":     config.KeyRetry,
	"log-level": config.KeyLogLevel,
	"log-file":  config.KeyLogFile,
	"telemetry": config.KeyTelemetryEnabled,
}

var rootCmd = &cobra.Command{
	Use:           "recipedesk",
	Short:         "Browse, filter and edit a remote recipe collection",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configPath)
		if err != nil {
			return err
		}
		if err := setupLogging(); err != nil {
			return err
		}
		return telemetry.Init(cmd.Context(), telemetry.Config{
			Enabled:     cfg.Telemetry.Enabled,
			Stdout:      cfg.Telemetry.Stdout,
			ServiceName: "recipedesk",
			Version:     Version,
			Output:      log.Writer(),
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Shutdown(context.Background())
		closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default: ./recipedesk.yaml or ~/.recipedesk/recipedesk.yaml)")
	pf.String("base-url", "", "remote API base URL")
	pf.Duration("timeout", 0, "HTTP timeout per request")
	pf.Int("page-size", 0, "rows per page")
	pf.String("locale", "", "collation locale for name sorting (e.g. en, es, de)")
	pf.String("policy", "", "reconciliation policy when the server rejects a change (revert|keep)")
	pf.Duration("retry", 0, "retry transient edit/delete failures for up to this long (0 disables)")
	pf.String("log-level", "", "log level (off|normal|verbose)")
	pf.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	pf.Bool("telemetry", false, "export traces and metrics")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose/debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "disable all logging")

	if err := config.BindFlags(v, pf, flagKeys); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(listCmd, addCmd, exportCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging opens the log file and builds the root logger. Logs go to
// a file by default so the REPL and command output stay clean.
func setupLogging() error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = logger.LevelVerbose
	}
	if quiet {
		level = logger.LevelOff
	}

	var out io.Writer = os.Stderr
	path := cfg.Log.File
	if path != "" && path != "stderr" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		} else {
			out = f
			closeLog = func() { f.Close() }
		}
	}

	// Third-party libraries using the standard logger end up in the
	// same place.
	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)

	log = logger.New(level, out)
	return nil
}
