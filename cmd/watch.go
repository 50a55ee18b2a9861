package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradsync/portal/internal/core/events"
	"github.com/gradsync/portal/internal/notifications"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for notifications until interrupted",
	Long:  `Start the notification poller and print updates as they arrive. Press Ctrl+C to stop.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWatch()
	},
}

func runWatch() {
	application := mustInitAuthenticated()
	defer application.Close()

	lg := application.Logger

	application.Bus.Subscribe(events.TypeNotificationsRefreshed, func(ctx context.Context, event events.Event) error {
		data, ok := event.Payload().(map[string]interface{})
		if !ok {
			return nil
		}
		fmt.Printf("refreshed: %v notifications, %v unread\n", data["total"], data["unread_count"])
		return nil
	})

	application.Bus.Subscribe(events.TypeSessionLogout, func(ctx context.Context, event events.Event) error {
		fmt.Println("session ended, polling will idle until the next login")
		return nil
	})

	interval := watchInterval
	if interval <= 0 {
		interval = application.Config.Polling.Interval
	}

	poller := notifications.NewPoller(
		application.Notifications,
		application.Session,
		interval,
		application.Bus,
		lg,
	)

	stop := poller.Start(context.Background())
	lg.Info("notification poller started", "interval", interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Watching for notifications. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, stopping poller", "signal", sig)
	stop()
	fmt.Println("Stopped.")
}

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "poll interval (defaults to config value)")
}
