package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/internal/messaging"
	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long:  "Commands for viewing and editing the key/value settings stored in the database",
}

var listSettingsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")

		return withServices(cmd, func(ctx context.Context, svc *services.Services) error {
			settings, err := svc.Configurations.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-30s %s\n", "Key", "Value")
			fmt.Fprintln(out, strings.Repeat("-", 60))

			count := 0
			for _, s := range settings {
				if prefix != "" && !strings.HasPrefix(s.Key, prefix) {
					continue
				}
				fmt.Fprintf(out, "%-30s %s\n", s.Key, s.Value)
				count++
			}

			fmt.Fprintf(out, "\nTotal: %d settings\n", count)
			return nil
		})
	},
}

var getSettingCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, svc *services.Services) error {
			s, err := svc.Configurations.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Value)
			return nil
		})
	},
}

var setSettingCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Create or overwrite a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, svc *services.Services) error {
			s, err := svc.Configurations.Set(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s = %s\n", s.Key, s.Value)
			return nil
		})
	},
}

var deleteSettingCmd = &cobra.Command{
	Use:   "delete [key]",
	Short: "Delete a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, svc *services.Services) error {
			if err := svc.Configurations.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Deleted %s\n", strings.TrimSpace(args[0]))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(listSettingsCmd)
	settingsCmd.AddCommand(getSettingCmd)
	settingsCmd.AddCommand(setSettingCmd)
	settingsCmd.AddCommand(deleteSettingCmd)

	listSettingsCmd.Flags().String("prefix", "", "Only show keys starting with prefix")
}

// withServices opens the same store, cache and publisher the server uses so
// that edits made from the terminal invalidate cached reads and emit events.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *services.Services) error) error {
	ctx := cmd.Context()

	cfg, log, err := loadRuntime(ctx)
	if err != nil {
		return err
	}

	store, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := cache.New(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	publisher, err := messaging.NewPublisher(&cfg.NATS, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	return fn(ctx, services.New(services.Deps{
		Store:     store,
		Cache:     c,
		Publisher: publisher,
		Logger:    log,
	}))
}
