package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-tracker/internal/notification"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Consume budget notifications from the broker",
	Long:  `Bind a durable queue to the notification exchange and log every budget alert it receives.`,
	RunE:  runNotificationWorker,
}

var workerQueue string

func init() {
	notificationWorkerCmd.Flags().StringVar(&workerQueue, "queue", "budget-alerts", "Queue to bind to the notification exchange")
	workerCmd.AddCommand(notificationWorkerCmd)
}

func runNotificationWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Notification.Enabled() {
		return errors.New("notification.amqp_url is not configured")
	}
	lg := setupLogger(cfg)

	consumer, err := notification.DialConsumer(cfg.Notification, workerQueue, lg)
	if err != nil {
		return err
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("notification worker is running. Press Ctrl+C to stop.", "queue", workerQueue)
	err = consumer.Run(ctx, func(_ context.Context, n notification.BudgetNotification) error {
		lg.Warn("budget exceeded",
			"user_id", n.UserID,
			"message", n.Message,
			"total_paid", n.TotalPaid,
			"budget", n.Budget,
			"remaining_budget", n.RemainingBudget,
			"occurred_at", n.OccurredAt)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		lg.Info("notification worker stopped")
		return nil
	}
	return err
}
