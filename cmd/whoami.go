package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gradsync/portal/internal/dashboard"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Run: func(cmd *cobra.Command, args []string) {
		application, err := initApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer application.Close()

		user := application.Session.Current()
		if user == nil {
			fmt.Println("Not logged in.")
			return
		}

		labels := make([]string, 0, len(user.Roles))
		for _, r := range user.Roles {
			labels = append(labels, r.Normalized())
		}

		fmt.Printf("User:      %s (%s)\n", user.Name, user.Username)
		fmt.Printf("Email:     %s\n", user.Email)
		fmt.Printf("Roles:     %s\n", strings.Join(labels, ", "))
		fmt.Printf("Dashboard: %s\n", dashboard.ForUser(user))
	},
}
