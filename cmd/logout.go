package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		application, err := initApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer application.Close()

		if !application.Session.IsAuthenticated() {
			fmt.Println("No active session.")
			return
		}

		application.Session.Logout()
		fmt.Println("Logged out.")
	},
}
