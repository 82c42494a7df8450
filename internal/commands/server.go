package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Membrive92/TrackingFinance/internal/app"
	"github.com/spf13/cobra"
)

var (
	serverPort  int
	serverHost  string
	logLevel    string
	autoMigrate bool
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API",
	Long: `Start the tracking API.

This will start:
• The REST API under /v1 for assets, transactions, retentions, exchange rates and settings
• The optional read cache (memory or Redis)
• The optional change-event publisher (NATS JetStream)

Examples:
  tracking-finance server                    # Start with settings from the environment
  tracking-finance server --port 9090        # Start on a custom port
  tracking-finance server --migrate          # Apply pending migrations first
  tracking-finance server --log-level debug  # Enable debug logging`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides SERVER_PORT)")
	serverCmd.Flags().StringVarP(&serverHost, "host", "H", "", "Server host (overrides SERVER_HOST)")
	serverCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	serverCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply pending migrations before serving")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	// Override config with command line flags if provided
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if autoMigrate {
		cfg.Database.AutoMigrate = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	log.Info("🚀 Starting tracking API")

	application := app.New(cfg, log)

	if err := application.Initialize(); err != nil {
		log.WithError(err).Error("Failed to initialize application")
		return err
	}

	if err := application.Start(); err != nil {
		log.WithError(err).Error("Failed to start application")
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	var serveErr error
	select {
	case sig := <-interrupt:
		log.WithField("signal", sig.String()).Info("🛑 Shutdown signal received")
	case serveErr = <-application.Err():
		log.WithError(serveErr).Error("❌ API server stopped unexpectedly")
	}

	if err := application.Stop(); err != nil {
		log.WithError(err).Error("❌ Application shutdown error")
		return err
	}
	log.Info("✅ Application shutdown complete")
	return serveErr
}
