package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/spf13/cobra"
)

var (
	migrationPath string
	dryRun        bool
	rollback      bool
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long: `Manage the versioned database schema.

Migrations are embedded in the binary, one directory per driver (mysql, sqlite).
This command handles:
• Running pending migrations
• Rolling back the last migration
• Checking migration status
• Creating migration files
• Clearing a dirty version after a failed migration

Examples:
  tracking-finance migrate up                         # Run all pending migrations
  tracking-finance migrate up --dry-run               # List pending migrations only
  tracking-finance migrate down --rollback            # Roll back the last migration
  tracking-finance migrate status                     # Show migration status
  tracking-finance migrate create add_portfolio_table # Create new migration files
  tracking-finance migrate force 3                    # Mark version 3 as clean`,
}

// migrateUpCmd runs pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run pending migrations",
	Long:  "Execute all pending database migrations",
	RunE:  runMigrateUp,
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback migrations",
	Long:  "Rollback the last applied migration",
	RunE:  runMigrateDown,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  "Display the status of all migrations",
	RunE:  runMigrateStatus,
}

// migrateCreateCmd creates a new migration file
var migrateCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new migration file",
	Long:  "Create an empty up/down migration pair for the configured driver",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMigrateCreate,
}

var migrateForceCmd = &cobra.Command{
	Use:   "force [version]",
	Short: "Force the recorded migration version",
	Long:  "Set the schema version without running migrations, clearing the dirty flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrateForce,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateCreateCmd)
	migrateCmd.AddCommand(migrateForceCmd)

	migrateCmd.PersistentFlags().StringVarP(&migrationPath, "path", "p", "./internal/database/migrations", "Migration source directory (create only)")
	migrateCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would be executed without running")

	migrateDownCmd.Flags().BoolVar(&rollback, "rollback", false, "Confirm rollback operation")
}

func newMigrator(cmd *cobra.Command) (*database.Migrator, error) {
	cfg, log, err := loadRuntime(cmd.Context())
	if err != nil {
		return nil, err
	}
	return database.NewMigrator(cfg, log), nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if dryRun {
		status, err := m.Status()
		if err != nil {
			return err
		}
		pending := 0
		for _, s := range status {
			if !s.Applied {
				pending++
				fmt.Fprintf(out, "  [DRY RUN] Would apply: %06d - %s\n", s.Version, s.Name)
			}
		}
		if pending == 0 {
			fmt.Fprintln(out, "✅ No pending migrations")
		}
		return nil
	}

	changed, err := m.Up()
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(out, "✅ No pending migrations")
		return nil
	}

	version, _, _, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "🎉 All migrations applied successfully! (version %d)\n", version)
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	version, _, ok, err := m.Version()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "❌ No migrations to rollback")
		return nil
	}

	fmt.Fprintf(out, "Rolling back migration: %06d\n", version)

	if dryRun {
		fmt.Fprintln(out, "  [DRY RUN] Nothing was changed")
		return nil
	}
	if !rollback {
		return fmt.Errorf("rollback requires --rollback flag for confirmation")
	}

	if _, err := m.Down(); err != nil {
		return err
	}
	fmt.Fprintln(out, "  ✅ Rolled back successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	status, err := m.Status()
	if err != nil {
		return err
	}
	_, dirty, _, err := m.Version()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Migration Status (%s):\n", m.Dir())
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "%-10s %-40s %s\n", "Version", "Name", "Status")
	fmt.Fprintln(out, strings.Repeat("-", 64))
	for _, s := range status {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(out, "%-10s %-40s %s\n", fmt.Sprintf("%06d", s.Version), s.Name, state)
	}
	if dirty {
		fmt.Fprintln(out, "\n⚠️  Database is dirty; fix the failed migration and run 'migrate force <version>'")
	}
	return nil
}

func runMigrateCreate(cmd *cobra.Command, args []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}

	available, err := m.Available()
	if err != nil {
		return err
	}
	var next uint = 1
	if n := len(available); n > 0 {
		next = available[n-1].Version + 1
	}

	// New files go next to the embedded ones so the next build picks them up.
	dir := strings.TrimSuffix(migrationPath, "/") + "/" + strings.TrimPrefix(m.Dir(), "migrations/")
	up, down, err := database.CreateMigration(dir, strings.Join(args, " "), next)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Created migration file: %s\n", up)
	fmt.Fprintf(out, "✅ Created migration file: %s\n", down)
	return nil
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}

	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Forced version %d\n", version)
	return nil
}
