// Command apiserver runs the exploration API server without the CLI wrapper,
// for container deployments configured entirely through the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/toxscope/toxscope/internal/bootstrap"
	"github.com/toxscope/toxscope/internal/config"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)

	if err := bootstrap.RunServer(context.Background(), cfg, log, Version); err != nil {
		log.Error("server exited", logging.Err(err))
		os.Exit(1)
	}
}
