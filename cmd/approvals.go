package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Approval workflow commands",
}

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending approval requests",
	Run: func(cmd *cobra.Command, args []string) {
		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Approvals.RefreshApprovals(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch approvals: %v\n", err)
			os.Exit(1)
		}

		pending := application.Approvals.Approvals().Pending()
		if len(pending) == 0 {
			fmt.Println("No pending approvals.")
			return
		}
		for _, a := range pending {
			requester := "unknown"
			if a.RequestedBy != nil {
				requester = a.RequestedBy.Name
			}
			fmt.Printf("[%d] %s (level %d) requested by %s\n", a.ID, a.Type, a.ApprovalLevel, requester)
		}
	},
}

var approvalsRespondCmd = &cobra.Command{
	Use:   "respond [id] [approve|reject]",
	Short: "Approve or reject a pending request",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid approval id %q\n", args[0])
			os.Exit(1)
		}
		approve, err := parseDecision(args[1], "approve")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Approvals.RefreshApprovals(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch approvals: %v\n", err)
			os.Exit(1)
		}

		application.Approvals.RespondApproval(ctx, id, approve)
		fmt.Printf("Response recorded for approval %d.\n", id)
	},
}

var invitationsCmd = &cobra.Command{
	Use:   "invitations",
	Short: "Group invitation commands",
}

var invitationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending group invitations",
	Run: func(cmd *cobra.Command, args []string) {
		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Approvals.RefreshInvitations(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch invitations: %v\n", err)
			os.Exit(1)
		}

		pending := application.Approvals.Invitations().Pending()
		if len(pending) == 0 {
			fmt.Println("No pending invitations.")
			return
		}
		for _, inv := range pending {
			from := "unknown"
			if inv.InvitedBy != nil {
				from = inv.InvitedBy.Name
			}
			fmt.Printf("[%d] invited by %s, expires %s\n", inv.ID, from, inv.ExpiresAt.Format("2006-01-02"))
		}
	},
}

var invitationsRespondCmd = &cobra.Command{
	Use:   "respond [id] [accept|reject]",
	Short: "Accept or reject a group invitation",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid invitation id %q\n", args[0])
			os.Exit(1)
		}
		accept, err := parseDecision(args[1], "accept")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		application := mustInitAuthenticated()
		defer application.Close()

		ctx := context.Background()
		if err := application.Approvals.RefreshInvitations(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch invitations: %v\n", err)
			os.Exit(1)
		}

		application.Approvals.RespondInvitation(ctx, id, accept)
		fmt.Printf("Response recorded for invitation %d.\n", id)
	},
}

func parseDecision(arg, positive string) (bool, error) {
	switch arg {
	case positive:
		return true, nil
	case "reject":
		return false, nil
	default:
		return false, fmt.Errorf("decision must be %q or \"reject\", got %q", positive, arg)
	}
}

func init() {
	approvalsCmd.AddCommand(approvalsListCmd)
	approvalsCmd.AddCommand(approvalsRespondCmd)
	invitationsCmd.AddCommand(invitationsListCmd)
	invitationsCmd.AddCommand(invitationsRespondCmd)
}
