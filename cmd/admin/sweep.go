package main

import (
	"fmt"
	"time"

	"docassist/internal/domain/models"
	"docassist/internal/domain/services"
	"docassist/internal/repository/postgres"
	"docassist/internal/service/reminders"
	"docassist/internal/service/tasks"

	"github.com/spf13/cobra"
)

var (
	sweepUser    string
	advanceHours int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Create deadline notifications for todos that are due soon",
	Long: `sweep flags pending todos whose due date falls within the advance window
and records one deadline notification per todo. Without --user every owner
with pending deadlines is processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, repoConfig, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		hours := cfg.DeadlineAdvanceHours
		if advanceHours > 0 {
			hours = advanceHours
		}

		// No publisher here: notifications are stored and picked up by the next client poll.
		notifier := tasks.NewNotifier(postgres.NewNotificationRepository(repoConfig), nil, logger)
		sweeper := reminders.NewSweeper(postgres.NewTodoRepository(repoConfig), notifier, hours, logger)

		var result *services.SweepResult
		if sweepUser != "" {
			result, err = sweeper.Sweep(ctx, &models.Caller{UserID: sweepUser}, time.Now())
		} else {
			result, err = sweeper.SweepAll(ctx, time.Now())
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "checked %d, notified %d, failed %d\n",
			result.Checked, result.Notified, result.Failed)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepUser, "user", "", "Only sweep this user's todos")
	sweepCmd.Flags().IntVar(&advanceHours, "advance-hours", 0, "Override DEADLINE_ADVANCE_HOURS")
	rootCmd.AddCommand(sweepCmd)
}
