package cli

import (
	"fmt"

	"cvranker/internal/ai"
	"cvranker/internal/server"
	"cvranker/internal/specs"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP ranking API",
	Long: `Start an HTTP server exposing the analysis pipeline.

Available endpoints:
- POST /api/v1/analyze: Analyze one candidate's raw text against a role
- POST /api/v1/rank: Rank a batch of raw texts against a role
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

Specs are loaded at startup; with specs.watch enabled they reload on file
changes without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.mode", "tls-mode")
	bindFlag("server.tls.certfile", "cert-file")
	bindFlag("server.tls.keyfile", "key-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Command-line flags override the loaded configuration when set
	for flagName, target := range map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
	} {
		if value, _ := cmd.Flags().GetString(flagName); value != "" {
			*target = value
		}
	}

	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	loader := specs.NewLoader(cfg.Specs.Dir, logger)
	loaded, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load specs: %w", err)
	}
	logger.Info("Specs loaded",
		"project", loaded.Project.ProjectID,
		"roles", len(loaded.Project.Roles),
		"errors", len(loaded.Errors))

	var summarizer *ai.Service
	if cfg.AI.Enabled {
		summarizer, err = ai.NewService(&cfg.AI, logger)
		if err != nil {
			return fmt.Errorf("failed to create AI summarizer: %w", err)
		}
	}

	srv := server.NewServer(cfg, Version, loaded, summarizer, logger)

	if cfg.Specs.Watch {
		watcher := specs.NewWatcher(loader, logger, srv.ReplaceSpecs)
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start specs watcher: %w", err)
		}
		defer watcher.Stop()
	}

	return srv.Start()
}
