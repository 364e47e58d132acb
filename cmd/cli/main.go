// Command crest is the operational CLI: database seeding, counter
// reconciliation and notification pruning.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crestapp/crest/backend/internal/config"
	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/engagement"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/seed"
)

var rootCmd = &cobra.Command{
	Use:   "crest",
	Short: "Crest CLI - operational tooling for the Crest backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg := config.Load()
		if err := logger.Initialize(cfg.LogLevel, ""); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := database.Initialize(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return database.Migrate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		database.Close()
		logger.Close()
	},
}

var seedCmd = &cobra.Command{
	Use:       "seed [dev|test|clean]",
	Short:     "Seed the database with fake data",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"dev", "test", "clean"},
	RunE: func(cmd *cobra.Command, args []string) error {
		seeder := seed.NewSeeder(database.DB)
		switch args[0] {
		case "dev":
			return seeder.SeedDev()
		case "test":
			return seeder.SeedTest()
		case "clean":
			return seeder.Clean()
		}
		return fmt.Errorf("unknown seed mode: %s", args[0])
	},
}

var reconcileAll bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recount engagement counters and repair drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		reconciler := engagement.NewReconciler(database.DB, 0)
		var fixed int
		var err error
		if reconcileAll {
			fixed, err = reconciler.ReconcileAll(ctx)
		} else {
			fixed, err = reconciler.ReconcileRecent(ctx)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Reconciled counters, fixed %d drifted values\n", fixed)
		return nil
	},
}

var pruneMaxAgeDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old read notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		maxAge := time.Duration(pruneMaxAgeDays) * 24 * time.Hour
		pruner := notify.NewPruner(database.DB, 0, maxAge)
		pruned, err := pruner.PruneOnce(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Pruned %d read notifications older than %d days\n", pruned, pruneMaxAgeDays)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileAll, "all", false, "Reconcile every post, not just recently active ones")
	pruneCmd.Flags().IntVar(&pruneMaxAgeDays, "max-age-days", 30, "Retention age for read notifications")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(pruneCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
