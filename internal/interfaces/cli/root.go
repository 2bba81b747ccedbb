// Package cli implements the toxscope command tree: the API server under
// `serve` plus the offline `margins` and `validate` commands that work a
// dataset without starting a server.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toxscope/toxscope/internal/config"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Output     string
}

// NewRootCommand creates the root cobra command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "toxscope",
		Short:   "toxscope — compound dose-response toxicity exploration",
		Long:    "toxscope serves an interactive safety-margin exploration API over a\ncompound dose-response dataset, and ships offline commands for margin\nanalysis and dataset validation.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./toxscope.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.Output, "output", "o", "table", "output format (table, json)")

	cmd.AddCommand(
		NewServeCmd(opts),
		NewMarginsCmd(opts),
		NewValidateCmd(opts),
	)

	return cmd
}

// Execute runs the root command. Errors are printed to stderr by the caller.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves configuration with priority flag path, then the
// default search paths, then environment variables over defaults.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./toxscope.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".toxscope", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/toxscope/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	return config.LoadFromEnv()
}

// newLogger builds the command logger, honouring the --log-level override.
// CLI logs go to stderr so stdout stays clean for command output.
func newLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if opts.LogLevel != "" {
		logCfg.Level = opts.LogLevel
	}
	logCfg.Format = "console"
	logCfg.OutputPaths = []string{"stderr"}
	return logging.NewLogger(logCfg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(padRight(h, colWidths[i]))
	}
	sb.WriteString("\n")

	for i, w := range colWidths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < len(headers); i++ {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
