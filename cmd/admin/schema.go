package main

import (
	"fmt"

	"docassist/internal/repository/postgres"

	"github.com/spf13/cobra"
)

var printOnly bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes for the current environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		if printOnly {
			ddl, err := postgres.RenderSchema(postgres.NewTableNames(cfg.TablePrefix))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ddl)
			return nil
		}

		pool, repoConfig, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		return postgres.EnsureSchema(cmd.Context(), repoConfig)
	},
}

var confirmDrop bool

var dropCmd = &cobra.Command{
	Use:   "drop-tables",
	Short: "Drop every table for the current table prefix",
	Long: `drop-tables removes all docassist tables for the prefix derived from
ENVIRONMENT (or TABLE_PREFIX). Requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmDrop {
			return fmt.Errorf("refusing to drop tables with prefix %q without --yes", cfg.TablePrefix)
		}

		pool, repoConfig, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.DropTables(cmd.Context(), repoConfig); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "All tables dropped (prefix: %s)\n", cfg.TablePrefix)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&printOnly, "print", false, "Print the DDL instead of applying it")
	dropCmd.Flags().BoolVar(&confirmDrop, "yes", false, "Confirm dropping all tables")
	rootCmd.AddCommand(migrateCmd, dropCmd)
}
