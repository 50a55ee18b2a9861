package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Notification commands",
	Long:  `List notifications, mark them read, or delete them.`,
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Run: func(cmd *cobra.Command, args []string) {
		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Notifications.Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch notifications: %v\n", err)
			os.Exit(1)
		}

		store := application.Notifications.Store()
		items := store.All()
		if len(items) == 0 {
			fmt.Println("No notifications.")
			return
		}

		fmt.Printf("%d notifications, %d unread\n\n", len(items), store.UnreadCount())
		for _, n := range items {
			marker := " "
			if !n.IsRead {
				marker = "*"
			}
			fmt.Printf("%s [%d] (%s) %s: %s\n", marker, n.ID, n.Type, n.Title, n.Message)
		}
	},
}

var notificationsMarkReadCmd = &cobra.Command{
	Use:   "mark-read [id]",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid notification id %q\n", args[0])
			os.Exit(1)
		}

		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Notifications.Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch notifications: %v\n", err)
			os.Exit(1)
		}

		application.Notifications.MarkRead(ctx, id)
		fmt.Printf("Marked %d as read. %d unread remaining.\n", id, application.Notifications.Store().UnreadCount())
	},
}

var notificationsMarkAllCmd = &cobra.Command{
	Use:   "mark-all-read",
	Short: "Mark every notification as read",
	Run: func(cmd *cobra.Command, args []string) {
		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Notifications.Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch notifications: %v\n", err)
			os.Exit(1)
		}

		application.Notifications.MarkAllRead(ctx)
		fmt.Println("All notifications marked as read.")
	},
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid notification id %q\n", args[0])
			os.Exit(1)
		}

		application := mustInitAuthenticated()
		defer application.Close()

		application.Notifications.Delete(context.Background(), id)
		fmt.Printf("Deleted notification %d.\n", id)
	},
}

var notificationsUnreadCmd = &cobra.Command{
	Use:   "unread-count",
	Short: "Show the backend's unread counter",
	Run: func(cmd *cobra.Command, args []string) {
		application := mustInitAuthenticated()
		defer application.Close()

		count, err := application.Notifications.UnreadCount(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch unread count: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d unread\n", count)
	},
}

// mustInitAuthenticated boots the app and exits when no session exists;
// every notification command needs a credential.
func mustInitAuthenticated() *app {
	application, err := initApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := application.Session.RequireAuth(); err != nil {
		application.Close()
		fmt.Fprintf(os.Stderr, "%v. Run 'gradportal login' first.\n", err)
		os.Exit(1)
	}
	return application
}

func init() {
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsMarkReadCmd)
	notificationsCmd.AddCommand(notificationsMarkAllCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
	notificationsCmd.AddCommand(notificationsUnreadCmd)
}
