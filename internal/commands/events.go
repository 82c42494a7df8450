package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Membrive92/TrackingFinance/internal/messaging"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events [entity]",
	Short: "Follow change events",
	Long: `Print every change event published by the API until interrupted.

Requires NATS_ENABLED=true. Without an argument all entities are followed.

Examples:
  tracking-finance events                 # Everything
  tracking-finance events asset           # tracking.asset.*
  tracking-finance events exchange_rate   # tracking.exchange_rate.*`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	if !cfg.NATS.Enabled {
		return fmt.Errorf("change events are disabled, set NATS_ENABLED=true")
	}

	nc, err := messaging.NewNATSClient(&cfg.NATS, log)
	if err != nil {
		return err
	}
	defer nc.Close()

	subject := messaging.SubjectPrefix + ".>"
	if len(args) == 1 {
		subject = messaging.SubjectPrefix + "." + args[0] + ".*"
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	err = nc.SubscribeChanges(subject, func(event *models.ChangeEvent) {
		if err := enc.Encode(event); err != nil {
			log.WithError(err).Warn("Failed to print change event")
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "👂 Listening on %s\n", subject)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	return nc.Drain()
}
