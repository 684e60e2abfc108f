package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	invitation "partnerdash/internal/invitation/models"
)

func (c *cli) inviteCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "invite EMAIL",
		Short: "Invite someone (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			resp, err := c.client.Invite(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Invitation created for %s\n", args[0])
			if resp.Warning != "" {
				fmt.Fprintf(c.out, "Warning: %s\n", resp.Warning)
				fmt.Fprintf(c.out, "Share this token by hand: %s\n", resp.Token)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "user", "role granted on acceptance (user or admin)")
	cmd.AddCommand(c.inviteLookupCmd())
	return cmd
}

func (c *cli) inviteLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup TOKEN",
		Short: "Show who an invitation is for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := c.client.LookupInvitation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if inv == nil {
				return errors.New(invitation.MsgInvalidInvitation)
			}
			fmt.Fprintf(c.out, "Invitation for %s as %s\n", inv.Email, inv.Role)
			return nil
		},
	}
}

func (c *cli) acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept TOKEN",
		Short: "Accept an invitation for the signed-in account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			if err := c.client.AcceptInvitation(cmd.Context(), args[0]); err != nil {
				return err
			}
			role, err := c.client.Role(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Invitation accepted. Your role is %s.\n", role)
			return nil
		},
	}
}
