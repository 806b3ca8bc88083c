package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/core/storage"
	expensePostgres "github.com/frahmantamala/expense-tracker/internal/expense/postgres"
	"github.com/frahmantamala/expense-tracker/internal/notification"
)

var notifyUserID int64

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Budget notification commands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Publish a budget notification for a user",
	Long:  `Compute the user's current summary and publish it to the notification exchange, whether or not the user is over budget. Use it to verify broker wiring.`,
	RunE:  runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().Int64Var(&notifyUserID, "user-id", 0, "User to build the notification for")
	_ = notifyTestCmd.MarkFlagRequired("user-id")
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	if !cfg.Notification.Enabled() {
		return errors.New("notification.amqp_url is not configured")
	}
	lg := setupLogger(cfg)
	ctx := context.Background()

	db, err := storage.Open(cfg.Database, gormlogger.Silent)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := expensePostgres.NewExpenseRepository(db.Gorm, db.SQL, cfg.Database.QueryTimeout).Summary(ctx, notifyUserID)
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}

	publisher, err := notification.Dial(cfg.Notification, lg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	event := events.NewBudgetExceededEvent(notifyUserID, summary.User, summary.Budget, summary.TotalPaid, summary.RemainingBudget)
	if err := publisher.Publish(ctx, notification.NewBudgetNotification(event)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published notification for user %d (%s, remaining %.2f)\n",
		notifyUserID, summary.Status, summary.RemainingBudget)
	return nil
}
