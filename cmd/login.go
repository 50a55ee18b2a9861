package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradsync/portal/internal/dashboard"
	"github.com/gradsync/portal/internal/session"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the portal backend",
	Run: func(cmd *cobra.Command, args []string) {
		runLogin()
	},
}

func runLogin() {
	application, err := initApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	resp, err := application.Client.Login(context.Background(), loginUsername, loginPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}

	user, err := application.Session.Login(resp.User, resp.User.Roles, session.Tokens{
		Access:  resp.Access,
		Refresh: resp.Refresh,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Username)

	view := dashboard.ForUser(user)
	if view == dashboard.Unknown {
		fmt.Println("Warning: no dashboard matches your role; contact an administrator.")
		return
	}
	fmt.Printf("Dashboard: %s\n", view)
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Portal username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Portal password")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}
