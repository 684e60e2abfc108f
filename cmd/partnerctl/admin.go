package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users and invitations (admins only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.init(); err != nil {
				return err
			}
			_, err := c.signedIn(cmd.Context())
			return err
		},
	}
	cmd.AddCommand(
		c.adminUsersCmd(),
		c.adminInvitationsCmd(),
		c.adminStatsCmd(),
		c.adminSetRoleCmd(),
		c.adminDeleteUserCmd(),
		c.adminDeleteInvitationCmd(),
	)
	return cmd
}

func (c *cli) adminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List approved users",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := c.client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USER ID\tEMAIL\tROLE\tSINCE")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.UserID, row.Email, row.Role, row.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) adminInvitationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invitations",
		Short: "List invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := c.client.ListInvitations(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tSTATUS\tEXPIRES")
			for _, row := range rows {
				status := "open"
				switch {
				case row.Deleted:
					status = "deleted"
				case row.Used:
					status = "accepted"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.ID, row.Email, row.Role, status, row.ExpiresAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) adminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show user base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Users:               %d\n", stats.TotalUsers)
			fmt.Fprintf(c.out, "Admins:              %d\n", stats.Admins)
			fmt.Fprintf(c.out, "Pending invitations: %d\n", stats.PendingInvitations)
			return nil
		},
	}
}

func (c *cli) adminSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role USER_ID user|admin",
		Short: "Change an approved user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.UpdateRole(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Role of %s set to %s.\n", args[0], args[1])
			return nil
		},
	}
}

func (c *cli) adminDeleteUserCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-user USER_ID",
		Short: "Delete a user and end their sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintf(c.out, "Delete user %s? Type 'yes' to confirm: ", args[0])
				answer, err := c.readLine()
				if err != nil {
					return err
				}
				if answer != "yes" {
					fmt.Fprintln(c.out, "Aborted.")
					return nil
				}
			}
			if err := c.client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "User deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) adminDeleteInvitationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-invitation ID",
		Short: "Withdraw an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.DeleteInvitation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Invitation deleted.")
			return nil
		},
	}
}
