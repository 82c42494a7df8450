package commands

import (
	"context"
	"fmt"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tracking-finance",
	Short: "Personal investment tracking backend",
	Long: `A small backend for tracking a personal investment portfolio.

It stores:
• Assets (ETFs, stocks and crypto) with their current price
• Buy, sell and dividend transactions per asset
• Withholding-tax retentions per transaction and month
• Historical exchange rates
• Application settings as key/value pairs`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; variables already set in the environment win.
		_, err := config.LoadDotEnv()
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "❌ %v\n", err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadRuntime loads the configuration and builds the logger shared by every
// command.
func loadRuntime(ctx context.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
