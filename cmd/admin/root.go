package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"docassist/internal/config"
	"docassist/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docassist-admin",
	Short: "Maintenance commands for the docassist backend",
	Long: `docassist-admin runs one-off maintenance against the configured database:
schema setup, table teardown and deadline sweeps.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openDatabase connects using SUPABASE_DB_URL. The caller closes the pool.
func openDatabase(ctx context.Context) (*pgxpool.Pool, *postgres.RepositoryConfig, error) {
	if cfg.SupabaseDBURL == "" {
		return nil, nil, fmt.Errorf("SUPABASE_DB_URL environment variable is required")
	}
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}, nil
}
