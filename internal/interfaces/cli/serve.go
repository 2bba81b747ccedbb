package cli

import (
	"github.com/spf13/cobra"

	"github.com/toxscope/toxscope/internal/bootstrap"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// NewServeCmd creates the `serve` command: the full exploration API server.
func NewServeCmd(opts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the exploration API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
			}
			log, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			return bootstrap.RunServer(cmd.Context(), cfg, log, Version)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
